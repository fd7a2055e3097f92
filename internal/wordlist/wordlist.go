// Package wordlist loads the word pools that cards are drawn from.
package wordlist

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Builtin is the word source identifier of the embedded default pool.
const Builtin = "builtin"

//go:embed buzzwords.txt
var builtinWords string

var ErrEmptySource = errors.New("word source contains no words")

// Load resolves a word source identifier: Builtin or a path to a newline-delimited file.
func Load(source string) ([]string, error) {
	if source == "" || source == Builtin {
		return Parse(strings.NewReader(builtinWords))
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("could not open word source %q: %w", source, err)
	}
	defer file.Close()

	words, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("word source %q: %w", source, err)
	}

	return words, nil
}

// Parse reads one word per line. Lines are trimmed, blank lines and lines
// starting with # are skipped.
func Parse(reader io.Reader) ([]string, error) {
	var words []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read words: %w", err)
	}

	if len(words) == 0 {
		return nil, ErrEmptySource
	}

	return words, nil
}
