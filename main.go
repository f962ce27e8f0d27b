// ABOUTME: Entry point for crate-sorter application
// ABOUTME: Builds the command-line app and maps its outcome to an exit code

// Package main provides the entry point for crate-sorter, which copies audio
// files into one folder per category letter found in their comment tag.
package main

import (
	"fmt"
	"os"
)

// Version is set at build time
var Version = "dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if err := newApp().Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}
