package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Trims lines and skips blanks and comments", func(t *testing.T) {
		input := "  Synergy \n\n# comment\nCloud\r\n\tPivot\n"

		words, err := Parse(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"Synergy", "Cloud", "Pivot"}, words)
	})

	t.Run("Empty input is an error", func(t *testing.T) {
		_, err := Parse(strings.NewReader("\n# nothing\n"))

		require.ErrorIs(t, err, ErrEmptySource)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Builtin pool fits a 7x7 card", func(t *testing.T) {
		words, err := Load(Builtin)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(words), 49)
	})

	t.Run("Reads a word file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "words.txt")
		require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0o600))

		words, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, words)
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))

		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
