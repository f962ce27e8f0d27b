// ABOUTME: Sort run implementation shared by the sort, watch and browse commands
// ABOUTME: Discovers tracks, optionally syncs the target, then places every track

package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"crate-sorter/library"
	"crate-sorter/placement"
)

// FailedDestinationsError is returned after a run where some copies failed
type FailedDestinationsError struct {
	Count int
}

func (e FailedDestinationsError) Error() string {
	return fmt.Sprintf("%d destinations could not be written", e.Count)
}

// runSort executes one sort run and prints its summary to out
func runSort(e *env, opts SortOptions, out io.Writer) (placement.Summary, error) {
	if err := opts.validate(); err != nil {
		return placement.Summary{}, err
	}

	engine, dry := newEngine(e, opts)

	tracks, err := library.Discover(opts.Source, e.logger)
	if err != nil {
		return placement.Summary{}, fmt.Errorf("failed to scan source: %w", err)
	}

	fmt.Fprintf(out, "Found %d classified tracks in %s\n", len(tracks), opts.Source)

	if opts.Sync {
		if err := syncTarget(e, engine, tracks, opts, out); err != nil {
			return placement.Summary{}, err
		}
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(tracks),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("placing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	summary := engine.PlaceAll(tracks, opts.Target, func(placement.Report) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})

	if bar != nil {
		_ = bar.Finish()
	}

	if dry != nil {
		printOps(out, dry.Ops())
		fmt.Fprintln(out, "\n--dry-run mode: nothing was written")
	}

	fmt.Fprintf(out, "Placed %d tracks: %d copied, %d already present, %d truncated, %d failed\n",
		summary.Tracks, summary.Copied, summary.Skipped, summary.Truncated, summary.Failed)

	if summary.Failed > 0 {
		return summary, FailedDestinationsError{Count: summary.Failed}
	}

	return summary, nil
}

// syncTarget relocates target files whose track no longer exists in the source
func syncTarget(e *env, engine *placement.Engine, source []*library.Track, opts SortOptions, out io.Writer) error {
	if _, err := os.Stat(opts.Target); os.IsNotExist(err) {
		e.logger.WithField("target", opts.Target).Debug("target does not exist yet, nothing to sync")

		return nil
	}

	target, err := library.Discover(opts.Target, e.logger)
	if err != nil {
		return fmt.Errorf("failed to scan target: %w", err)
	}

	report := engine.Sync(source, target, opts.Target, opts.Obsolete)

	fmt.Fprintf(out, "Sync: %d obsolete files, %d moved to %s, %d failed\n",
		report.Obsolete, report.Relocated, opts.Obsolete, report.Failed)

	return nil
}

// planSort computes the reports of a sort run without writing anything
func planSort(e *env, opts SortOptions) ([]placement.Report, error) {
	opts.DryRun = true

	if err := opts.validate(); err != nil {
		return nil, err
	}

	engine, _ := newEngine(e, opts)

	tracks, err := library.Discover(opts.Source, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	if opts.Sync {
		if err := syncTarget(e, engine, tracks, opts, io.Discard); err != nil {
			return nil, err
		}
	}

	reports := make([]placement.Report, 0, len(tracks))
	engine.PlaceAll(tracks, opts.Target, func(r placement.Report) {
		reports = append(reports, r)
	})

	return reports, nil
}

// printOps writes the operations recorded by a dry run as a table
func printOps(out io.Writer, ops []placement.Op) {
	if len(ops) == 0 {
		fmt.Fprintln(out, "\nNo operations planned")

		return
	}

	fmt.Fprintln(out, "\nPlanned operations:")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Op\tFrom\tTo")
	fmt.Fprintln(w, "--\t----\t--")

	for _, op := range ops {
		fmt.Fprintf(w, "%s\t%s\t%s\n", op.Kind, op.Src, op.Dst)
	}

	_ = w.Flush()
}
