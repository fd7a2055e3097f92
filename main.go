package main

import (
	"fmt"
	"os"
)

const releaseVersion = "0.1.0"

// main - is the entry point of the application. The process exits explicitly so
// an input read still blocked after the game ended cannot keep it alive.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newCmd(&flags{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(0)
}
