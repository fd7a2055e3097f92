package entity

import (
	"testing"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCard(rows ...[]string) *Card {
	return &Card{XAxis: len(rows[0]), YAxis: len(rows), Cells: rows}
}

func TestIsWinning(t *testing.T) {
	tests := []struct {
		name string
		grid [][]bool
		want bool
	}{
		{"empty grid", [][]bool{}, false},
		{"all false 3x3", [][]bool{{false, false, false}, {false, false, false}, {false, false, false}}, false},
		{"all false 2x4", [][]bool{{false, false, false, false}, {false, false, false, false}}, false},
		{"full row", [][]bool{{false, false, false}, {true, true, true}, {false, true, false}}, true},
		{"full column", [][]bool{{false, true, false}, {false, true, false}, {true, true, false}}, true},
		{"main diagonal", [][]bool{{true, false, false}, {false, true, false}, {false, false, true}}, true},
		{"anti diagonal", [][]bool{{false, false, true}, {false, true, false}, {true, false, false}}, true},
		{"almost a row", [][]bool{{true, true, false}, {false, false, false}, {false, false, false}}, false},
		{"non-square row", [][]bool{{true, true, true, true}, {false, false, false, false}}, true},
		{"non-square column", [][]bool{{false, true, false, false}, {false, true, false, false}}, true},
		{"non-square has no diagonal", [][]bool{{true, false, false}, {false, true, false}}, false},
		{"single cell marked", [][]bool{{true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWinning(tt.grid))
		})
	}
}

func TestMarkGrid_MarkUnmark(t *testing.T) {
	t.Run("Mark then unmark restores the previous state", func(t *testing.T) {
		// Given: a grid with one word already marked
		card := fixedCard([]string{"a", "b"}, []string{"c", "d"})
		grid := NewMarkGrid(card)
		grid.Mark("c")
		before := grid.Snapshot()

		// When: marking and unmarking another word
		assert.Equal(t, 1, grid.Mark("b"))
		assert.Equal(t, 1, grid.Unmark("b"))

		// Then: the grid is back where it started
		assert.Equal(t, before, grid.Snapshot())
	})

	t.Run("Marking is idempotent and absent words are a no-op", func(t *testing.T) {
		grid := NewMarkGrid(fixedCard([]string{"a", "b"}, []string{"c", "d"}))

		grid.Mark("a")
		once := grid.Snapshot()
		grid.Mark("a")
		matched := grid.Mark("zzz")

		assert.Equal(t, once, grid.Snapshot())
		assert.Zero(t, matched)
	})

	t.Run("Free space cannot be unmarked", func(t *testing.T) {
		card, err := NewCard(wordPool(25), 5, 5, nil)
		require.NoError(t, err)
		grid := NewMarkGrid(card)

		assert.Zero(t, grid.Unmark(FreeSpace))
		_, err = grid.UnmarkAt(2, 2)
		require.NoError(t, err)

		assert.True(t, grid.IsMarked(2, 2))
	})

	t.Run("MarkAt rejects cells outside the card", func(t *testing.T) {
		grid := NewMarkGrid(fixedCard([]string{"a", "b"}))

		word, err := grid.MarkAt(0, 1)
		require.NoError(t, err)
		assert.Equal(t, "b", word)

		_, err = grid.MarkAt(1, 0)
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})
}

func TestMarkGrid_IsWinning(t *testing.T) {
	t.Run("Row 2 of a 5x5 card wins, unmarking one word loses", func(t *testing.T) {
		// Given: a 5x5 card from a pool of 25 unique words
		card, err := NewCard(wordPool(25), 5, 5, nil)
		require.NoError(t, err)
		grid := NewMarkGrid(card)
		require.False(t, grid.IsWinning())

		// When: every word of row 2 is marked
		for _, word := range card.Cells[2] {
			grid.Mark(word)
		}

		// Then: the grid is winning
		assert.True(t, grid.IsWinning())

		// When: one non-free word is unmarked
		grid.Unmark(card.Cells[2][0])

		// Then: the grid is no longer winning
		assert.False(t, grid.IsWinning())
	})

	t.Run("Free space counts towards the diagonal", func(t *testing.T) {
		card, err := NewCard(wordPool(25), 5, 5, nil)
		require.NoError(t, err)
		grid := NewMarkGrid(card)

		for i := range 5 {
			if i == 2 {
				continue
			}
			grid.Mark(card.Cells[i][i])
		}

		assert.True(t, grid.IsWinning())
	})
}
