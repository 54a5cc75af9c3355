// Package analysis coordinates one architecture analysis run: structural
// validation, USES derivation, constraint evaluation, and report export
// over a single immutable graph snapshot.
package analysis

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/layerlens/internal/check"
	"github.com/dusk-indust/layerlens/internal/derive"
	"github.com/dusk-indust/layerlens/internal/export"
	"github.com/dusk-indust/layerlens/internal/graph"
)

// Options configures a run. Zero value means the default constraint set
// and no progress reporting.
type Options struct {
	// Constraints to evaluate; nil means check.Default().
	Constraints []check.Constraint

	// OnProgress receives each phase transition. The check and export
	// phases run concurrently, so the callback is invoked from their
	// goroutines and must be safe for concurrent use;
	// (*ProgressReporter).Emit satisfies this. May be nil.
	OnProgress func(ProgressEvent)
}

// Report is the complete outcome of a run. A run either produces a full
// Report or fails with an error; there is no partial success.
type Report struct {
	Uses        []graph.Edge      `json:"uses"`
	Results     []check.Result    `json:"results"`
	LayerView   *export.Graph     `json:"layerView"`
	PackageView *export.Graph     `json:"packageView"`
	Stats       *graph.GraphStats `json:"stats"`
}

// ViolationCount sums violations across all constraint results.
func (r *Report) ViolationCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Violations)
	}
	return n
}

// Run executes a full analysis over store. The store must be fully
// populated and is treated as read-only. Structural errors in the graph
// abort the run; empty derivations and zero violations are ordinary
// outcomes.
func Run(ctx context.Context, store graph.Store, opts Options) (*Report, error) {
	constraints := opts.Constraints
	if constraints == nil {
		constraints = check.Default()
	}

	emit := func(ev ProgressEvent) {
		if opts.OnProgress != nil {
			opts.OnProgress(ev)
		}
	}
	phase := func(p Phase, fn func() error) error {
		emit(ProgressEvent{Phase: p, Status: ProgressWorking})
		if err := fn(); err != nil {
			emit(ProgressEvent{Phase: p, Status: ProgressFailed, Message: err.Error()})
			return err
		}
		emit(ProgressEvent{Phase: p, Status: ProgressComplete})
		return nil
	}

	if err := phase(PhaseValidate, func() error {
		return store.Validate(ctx)
	}); err != nil {
		return nil, err
	}

	report := &Report{}

	if err := phase(PhaseDerive, func() error {
		uses, err := derive.Uses(ctx, store)
		if err != nil {
			return fmt.Errorf("derive uses: %w", err)
		}
		report.Uses = uses
		return nil
	}); err != nil {
		return nil, err
	}

	// Constraint evaluation and the two export views are independent
	// read-only computations over the same snapshot; fan out and join.
	input := check.Input{Store: store, Uses: report.Uses}
	emit(ProgressEvent{Phase: PhaseCheck, Status: ProgressWorking})
	emit(ProgressEvent{Phase: PhaseExport, Status: ProgressWorking})

	// Each goroutine attributes its own failure to its own phase; the
	// two view builders share the export phase, so the failed event is
	// emitted at most once.
	var exportFailed sync.Once
	failExport := func(err error) {
		exportFailed.Do(func() {
			emit(ProgressEvent{Phase: PhaseExport, Status: ProgressFailed, Message: err.Error()})
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := check.Evaluate(gctx, input, constraints)
		if err != nil {
			err = fmt.Errorf("evaluate constraints: %w", err)
			emit(ProgressEvent{Phase: PhaseCheck, Status: ProgressFailed, Message: err.Error()})
			return err
		}
		report.Results = results
		emit(ProgressEvent{Phase: PhaseCheck, Status: ProgressComplete})
		return nil
	})
	g.Go(func() error {
		view, err := export.LayerView(gctx, store, report.Uses)
		if err != nil {
			err = fmt.Errorf("layer view: %w", err)
			failExport(err)
			return err
		}
		report.LayerView = view
		return nil
	})
	g.Go(func() error {
		view, err := export.PackageView(gctx, store)
		if err != nil {
			err = fmt.Errorf("package view: %w", err)
			failExport(err)
			return err
		}
		report.PackageView = view
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	emit(ProgressEvent{Phase: PhaseExport, Status: ProgressComplete})

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	report.Stats = stats

	return report, nil
}
