package bots_monitor

import (
	"testing"

	"memescout/internal/filter"
	"memescout/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerReturnsSameSession(t *testing.T) {
	m := NewSessionManager()

	s1 := m.Get(100)
	s1.AwaitingInput = awaitingFilterText
	s2 := m.Get(100)

	assert.Same(t, s1, s2)
	assert.Equal(t, awaitingFilterText, s2.AwaitingInput)
	assert.Equal(t, 1, m.Len())
}

func TestSessionManagerIsolatesChats(t *testing.T) {
	m := NewSessionManager()

	m.Get(1).AwaitingInput = awaitingTokenAddress
	assert.Equal(t, awaitingNothing, m.Get(2).AwaitingInput)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManagerReset(t *testing.T) {
	m := NewSessionManager()
	s := m.Get(7)
	s.Builder = s.Builder.With(filter.AttrMarketCap, filter.Min, 10_000)
	s.AwaitingInput = awaitingFilterText

	m.Reset(7)

	fresh := m.Get(7)
	assert.True(t, fresh.Builder.Empty())
	assert.Equal(t, awaitingNothing, fresh.AwaitingInput)
}

func TestSessionSetResultsResetsPage(t *testing.T) {
	s := &Session{LastPage: 3}
	p := filter.Predicate{}.With(filter.AttrVolume24h, filter.Min, 1_000)

	records := []token.Record{{Address: "abc", Symbol: "ABC"}}
	s.SetResults(records, p, "vol ≥ $1.0K")

	assert.Equal(t, 0, s.LastPage)
	assert.Equal(t, records, s.LastResults)
	assert.Equal(t, "vol ≥ $1.0K", s.LastFilterText)
	assert.True(t, s.LastPredicate.Equal(p))
}

func TestSessionFindResult(t *testing.T) {
	s := &Session{LastResults: []token.Record{
		{Address: "mint-one", Symbol: "ONE"},
		{Address: "mint-two", Symbol: "TWO"},
	}}

	rec, ok := s.FindResult("mint-two")
	require.True(t, ok)
	assert.Equal(t, "TWO", rec.Symbol)

	_, ok = s.FindResult("missing")
	assert.False(t, ok)
}
