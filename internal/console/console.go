// Package console renders cards and game messages for a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
)

const (
	ansiGreen   = "\x1b[32m"
	ansiDefault = "\x1b[39m"
	ansiBoldRed = "\x1b[1;31m"
	ansiReset   = "\x1b[0m"
)

type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// New writes to out. Colors are used only when out is a terminal.
func New(out io.Writer) *Console {
	color := false
	if file, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}

	return &Console{out: out, color: color}
}

// RenderCard prints the card with marked cells highlighted.
func (that *Console) RenderCard(card *entity.Card, marks [][]bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	writer := tabwriter.NewWriter(that.out, 0, 0, 2, ' ', 0)

	header := make([]string, card.XAxis)
	for col := range header {
		header[col] = that.paint(strconv.Itoa(col), ansiDefault)
	}
	fmt.Fprintf(writer, "%s\t%s\t\n", that.paint("", ansiDefault), strings.Join(header, "\t"))

	for row, words := range card.Cells {
		cells := make([]string, len(words))
		for col, word := range words {
			cells[col] = that.cell(word, marks[row][col])
		}
		fmt.Fprintf(writer, "%s\t%s\t\n", that.paint(strconv.Itoa(row), ansiDefault), strings.Join(cells, "\t"))
	}

	_ = writer.Flush()
}

// Announce prints a prominent game event such as a win.
func (that *Console) Announce(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.color {
		fmt.Fprintf(that.out, "%s%s%s\n", ansiBoldRed, message, ansiReset)
		return
	}

	fmt.Fprintf(that.out, "*** %s ***\n", message)
}

func (that *Console) Info(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fmt.Fprintln(that.out, message)
}

func (that *Console) Prompt(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	fmt.Fprint(that.out, message)
}

func (that *Console) cell(word string, marked bool) string {
	switch {
	case that.color && marked:
		return that.paint(word, ansiGreen)
	case that.color:
		return that.paint(word, ansiDefault)
	case marked:
		return "[" + word + "]"
	default:
		return word
	}
}

// paint wraps text in an escape sequence. Every table cell gets a sequence of
// the same length because tabwriter counts escape bytes as width.
func (that *Console) paint(text, code string) string {
	if !that.color {
		return text
	}

	return code + text + ansiReset
}
