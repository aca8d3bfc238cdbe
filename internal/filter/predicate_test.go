package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithout_RemovesBothBounds(t *testing.T) {
	p := Predicate{}.
		With(AttrMarketCap, Min, 10_000).
		With(AttrMarketCap, Max, 1_000_000).
		With(AttrVolume24h, Min, 5_000)

	trimmed := p.Without(AttrMarketCap)

	_, hasMin := trimmed.Threshold(AttrMarketCap, Min)
	_, hasMax := trimmed.Threshold(AttrMarketCap, Max)
	assert.False(t, hasMin)
	assert.False(t, hasMax)

	v, ok := trimmed.Threshold(AttrVolume24h, Min)
	assert.True(t, ok)
	assert.Equal(t, 5_000.0, v)
}

func TestWithout_DoesNotMutateReceiver(t *testing.T) {
	p := Predicate{}.With(AttrLiquidity, Min, 50_000)
	_ = p.Without(AttrLiquidity)

	v, ok := p.Threshold(AttrLiquidity, Min)
	assert.True(t, ok)
	assert.Equal(t, 50_000.0, v)
}

func TestWithout_OnEmptyPredicate(t *testing.T) {
	assert.True(t, Predicate{}.Without(AttrHolders).Empty())
}

func TestWithout_UnsetAttributeIsNoop(t *testing.T) {
	p := Predicate{}.With(AttrMarketCap, Min, 10_000)
	assert.True(t, p.Without(AttrHolders).Equal(p))
}
