// ABOUTME: Diff command: tracks present in one tree but not in another
// ABOUTME: Compares by derived filename, so copies in several category folders count once

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"crate-sorter/library"
)

// runDiff lists the tracks of left whose identity is absent from right
func runDiff(e *env, left, right string, out io.Writer) error {
	leftTracks, err := library.Discover(left, e.logger)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", left, err)
	}

	rightTracks, err := library.Discover(right, e.logger)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", right, err)
	}

	diff := library.Difference(leftTracks, rightTracks)

	fmt.Fprintf(out, "%d of %d tracks in %s are missing from %s\n", len(diff), len(leftTracks), left, right)

	if len(diff) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nCode\tArtist\tTitle\tPath")
	fmt.Fprintln(w, "----\t------\t-----\t----")

	for _, t := range diff {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			t.Classification,
			truncate(t.Artist, 25),
			truncate(t.Title, 35),
			t.SourcePath,
		)
	}

	return w.Flush()
}
