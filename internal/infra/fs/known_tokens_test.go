package fs

import (
	"testing"

	"memescout/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKnownTokensWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	symbols, err := LoadKnownTokens()
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultKnownTokens, symbols)
}

func TestAddAndRemoveKnownToken(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, AddKnownToken("PEPE"))

	symbols, err := LoadKnownTokens()
	require.NoError(t, err)
	assert.True(t, IsKnownToken("pepe", symbols))
	assert.True(t, IsKnownToken("PEPE", symbols))

	// Adding again is a no-op.
	require.NoError(t, AddKnownToken("pepe"))
	again, err := LoadKnownTokens()
	require.NoError(t, err)
	assert.Len(t, again, len(symbols))

	require.NoError(t, RemoveKnownToken("pepe"))
	symbols, err = LoadKnownTokens()
	require.NoError(t, err)
	assert.False(t, IsKnownToken("pepe", symbols))
}

func TestRemoveKnownTokenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	err := RemoveKnownToken("nothere")
	assert.Error(t, err)
}

func TestAddKnownTokenEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.Error(t, AddKnownToken(""))
	assert.Error(t, AddKnownToken("   "))
}

func TestIsKnownToken(t *testing.T) {
	list := []string{"sol", "usdc", " bonk "}

	assert.True(t, IsKnownToken("SOL", list))
	assert.True(t, IsKnownToken("bonk", list))
	assert.False(t, IsKnownToken("wif", list))
	assert.False(t, IsKnownToken("", list))
	assert.False(t, IsKnownToken("sol", nil))
}

func TestSearchSnapshotRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	records := []token.Record{
		{Address: "So11111111111111111111111111111111111111112", Symbol: "TEST", MarketCap: 125000, Volume24h: 9000},
	}

	require.NoError(t, SaveSearchSnapshot(LastSearchFile, "MC ≥ $100.0K", records))

	snapshot, err := LoadSearchSnapshot(LastSearchFile)
	require.NoError(t, err)
	assert.Equal(t, "MC ≥ $100.0K", snapshot.Filter)
	require.Len(t, snapshot.Records, 1)
	assert.Equal(t, "TEST", snapshot.Records[0].Symbol)
	assert.False(t, snapshot.SavedAt.IsZero())
}

func TestLoadSearchSnapshotMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadSearchSnapshot("does_not_exist.json")
	assert.Error(t, err)
}
