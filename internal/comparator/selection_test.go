package comparator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []string{"bgfi", "ugb", "bicig", "ecobank", "cbao"}

func TestNewSelectionStartsWithDefaults(t *testing.T) {
	s := NewSelection(catalog)
	assert.Equal(t, []string{"bgfi", "ugb", "bicig"}, s.IDs())
	assert.False(t, s.AllSelected())
}

func TestToggleLastBankIsRejected(t *testing.T) {
	s := NewSelection(catalog)
	require.NoError(t, s.Toggle("ugb"))
	require.NoError(t, s.Toggle("bicig"))

	before := s.IDs()
	err := s.Toggle("bgfi")
	assert.ErrorIs(t, err, ErrLastBank)
	assert.Equal(t, before, s.IDs())
	assert.Equal(t, 1, s.Len())
}

func TestToggleUnknownBank(t *testing.T) {
	s := NewSelection(catalog)
	assert.ErrorIs(t, s.Toggle("nowhere"), ErrUnknownBank)
	assert.Equal(t, 3, s.Len())
}

func TestToggleAllIsAsymmetric(t *testing.T) {
	s := NewSelection(catalog)

	s.ToggleAll()
	assert.True(t, s.AllSelected())
	assert.Equal(t, catalog, s.IDs())

	s.ToggleAll()
	assert.Equal(t, []string{"bgfi"}, s.IDs())
}

func TestClearFallsBackToFirstKnownBank(t *testing.T) {
	s := NewSelection([]string{"ecobank", "cbao"})
	assert.Equal(t, []string{"ecobank"}, s.IDs())

	s.SelectAll()
	s.Clear()
	assert.Equal(t, []string{"ecobank"}, s.IDs())
}

func TestSetKnownDropsVanishedBanks(t *testing.T) {
	s := NewSelection(catalog)
	s.SetKnown([]string{"ugb", "ecobank"})
	assert.Equal(t, []string{"ugb"}, s.IDs())

	s.SetKnown([]string{"ecobank"})
	assert.Equal(t, []string{"ecobank"}, s.IDs())
}

func TestSelectionNeverEmpty(t *testing.T) {
	s := NewSelection(catalog)
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		switch r.Intn(5) {
		case 0:
			s.ToggleAll()
		case 1:
			s.Clear()
		default:
			_ = s.Toggle(catalog[r.Intn(len(catalog))])
		}
		require.Greater(t, s.Len(), 0, "step %d", i)
	}
}
