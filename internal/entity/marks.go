package entity

// MarkGrid tracks which cells of a card the local player has marked.
type MarkGrid struct {
	card  *Card
	marks [][]bool
}

func NewMarkGrid(card *Card) *MarkGrid {
	marks := make([][]bool, card.YAxis)
	for row := range marks {
		marks[row] = make([]bool, card.XAxis)
		for col, word := range card.Cells[row] {
			marks[row][col] = word == FreeSpace
		}
	}

	return &MarkGrid{card: card, marks: marks}
}

// Mark marks every cell holding word and returns how many cells matched.
func (that *MarkGrid) Mark(word string) int {
	return that.set(word, true)
}

// Unmark clears every cell holding word. The free space stays marked.
func (that *MarkGrid) Unmark(word string) int {
	if word == FreeSpace {
		return 0
	}

	return that.set(word, false)
}

func (that *MarkGrid) Card() *Card {
	return that.card
}

func (that *MarkGrid) MarkAt(row, col int) (string, error) {
	return that.setAt(row, col, true)
}

func (that *MarkGrid) UnmarkAt(row, col int) (string, error) {
	return that.setAt(row, col, false)
}

func (that *MarkGrid) IsMarked(row, col int) bool {
	if row < 0 || row >= len(that.marks) || col < 0 || col >= len(that.marks[row]) {
		return false
	}

	return that.marks[row][col] || that.card.Cells[row][col] == FreeSpace
}

func (that *MarkGrid) IsWinning() bool {
	return IsWinning(that.Snapshot())
}

// Snapshot returns a copy of the mark state with the free space always set.
func (that *MarkGrid) Snapshot() [][]bool {
	snapshot := make([][]bool, len(that.marks))
	for row := range that.marks {
		snapshot[row] = make([]bool, len(that.marks[row]))
		for col := range that.marks[row] {
			snapshot[row][col] = that.IsMarked(row, col)
		}
	}

	return snapshot
}

func (that *MarkGrid) set(word string, value bool) int {
	matched := 0
	for row, cells := range that.card.Cells {
		for col, cell := range cells {
			if cell == word {
				that.marks[row][col] = value
				matched++
			}
		}
	}

	return matched
}

func (that *MarkGrid) setAt(row, col int, value bool) (string, error) {
	word, err := that.card.Word(row, col)
	if err != nil {
		return "", err
	}

	if word == FreeSpace {
		return word, nil
	}

	that.marks[row][col] = value

	return word, nil
}

// IsWinning reports whether any row or column is fully marked. Diagonals count
// only on square grids.
func IsWinning(grid [][]bool) bool {
	rows := len(grid)
	if rows == 0 || len(grid[0]) == 0 {
		return false
	}
	cols := len(grid[0])

	for row := range rows {
		if all(cols, func(col int) bool { return grid[row][col] }) {
			return true
		}
	}

	for col := range cols {
		if all(rows, func(row int) bool { return grid[row][col] }) {
			return true
		}
	}

	if rows != cols {
		return false
	}

	return all(rows, func(i int) bool { return grid[i][i] }) ||
		all(rows, func(i int) bool { return grid[i][rows-1-i] })
}

func all(n int, marked func(int) bool) bool {
	for i := range n {
		if !marked(i) {
			return false
		}
	}

	return true
}
