package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/layerlens/internal/analysis"
	"github.com/dusk-indust/layerlens/internal/config"
)

// runCheck builds the graph, runs the full analysis, and prints one
// section per constraint. A non-nil error (and exit code 1) signals
// that violations exist, so CI can gate on it.
func runCheck(flags cliFlags, cfg *config.ProjectConfig, path string) error {
	ctx := context.Background()

	store, err := buildStore(ctx, flags, cfg, path)
	if err != nil {
		return err
	}
	defer store.Close()

	// Verbose mode streams progress to stderr through a ProgressReporter:
	// the run emits, a drain goroutine prints. The drain is joined before
	// the report itself is printed so the two outputs never interleave.
	opts := analysis.Options{}
	var reporter *analysis.ProgressReporter
	var drained chan struct{}
	if flags.Verbose {
		reporter = analysis.NewProgressReporter()
		drained = make(chan struct{})
		go func() {
			defer close(drained)
			for ev := range reporter.Subscribe() {
				fmt.Fprintln(os.Stderr, analysis.FormatProgress(ev))
			}
		}()
		opts.OnProgress = reporter.Emit
	}

	report, err := analysis.Run(ctx, store, opts)
	if reporter != nil {
		reporter.Close()
		<-drained
	}
	if err != nil {
		return err
	}

	for _, res := range report.Results {
		if len(res.Violations) == 0 {
			fmt.Printf("PASS  %s\n", res.Name)
			continue
		}
		fmt.Printf("FAIL  %s: %s\n", res.Name, res.Description)
		for _, v := range res.Violations {
			fmt.Printf("      %s -> %s\n", v.Offender, v.Target)
		}
	}

	fmt.Printf("\n%d component(s), %d USES edge(s), %d violation(s)\n",
		report.Stats.ComponentCount, len(report.Uses), report.ViolationCount())

	if n := report.ViolationCount(); n > 0 {
		return fmt.Errorf("%d constraint violation(s)", n)
	}
	return nil
}
