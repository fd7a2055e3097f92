package entity

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
)

// FreeSpace is the sentinel word placed in the center of 5x5 and 7x7 cards.
const FreeSpace = "FREE"

// Card is an immutable grid of words, Cells[row][col].
type Card struct {
	XAxis int
	YAxis int
	Cells [][]string
}

// NewCard draws XAxis*YAxis distinct words from pool and lays them out row by row.
// A nil rnd is replaced by a generator seeded from crypto/rand.
func NewCard(pool []string, xaxis, yaxis int, rnd *rand.Rand) (*Card, error) {
	if xaxis < 1 || yaxis < 1 {
		return nil, fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, xaxis, yaxis)
	}

	words := distinct(pool)
	size := xaxis * yaxis
	if len(words) < size {
		return nil, fmt.Errorf("%w: need %d, have %d", apperror.ErrInsufficientWords, size, len(words))
	}

	if rnd == nil {
		rnd = rand.New(rand.NewSource(newSeed())) //nolint: gosec // card shuffling, not crypto
	}

	// partial Fisher-Yates, only the first size positions are settled
	for i := range size {
		j := i + rnd.Intn(len(words)-i)
		words[i], words[j] = words[j], words[i]
	}

	cells := make([][]string, yaxis)
	for row := range yaxis {
		cells[row] = make([]string, xaxis)
		copy(cells[row], words[row*xaxis:(row+1)*xaxis])
	}

	if side, ok := freeSpaceSide(xaxis, yaxis); ok {
		cells[side/2][side/2] = FreeSpace
	}

	return &Card{XAxis: xaxis, YAxis: yaxis, Cells: cells}, nil
}

// Word returns the word at the given cell.
func (that *Card) Word(row, col int) (string, error) {
	if row < 0 || row >= that.YAxis || col < 0 || col >= that.XAxis {
		return "", fmt.Errorf("%w: %d,%d", apperror.ErrInvalidCell, row, col)
	}

	return that.Cells[row][col], nil
}

// HasFreeSpace reports whether the card carries a free center cell.
func (that *Card) HasFreeSpace() bool {
	_, ok := freeSpaceSide(that.XAxis, that.YAxis)
	return ok
}

func freeSpaceSide(xaxis, yaxis int) (int, bool) {
	if xaxis != yaxis {
		return 0, false
	}

	return xaxis, xaxis == 5 || xaxis == 7
}

func distinct(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	words := make([]string, 0, len(pool))

	for _, word := range pool {
		if _, ok := seen[word]; ok || word == FreeSpace {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}

	return words
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Errorf("read random seed: %w", err))
	}

	return int64(binary.LittleEndian.Uint64(b[:])) //nolint: gosec // overflow is fine for a seed
}
