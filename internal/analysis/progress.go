package analysis

import "fmt"

// Phase identifies one step of an analysis run.
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseDerive   Phase = "derive"
	PhaseCheck    Phase = "check"
	PhaseExport   Phase = "export"
)

// ProgressStatus is the state of a phase in a progress event.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent reports a phase transition during a run.
type ProgressEvent struct {
	Phase   Phase
	Status  ProgressStatus
	Message string
}

// ProgressReporter emits progress events through a buffered channel,
// decoupling a run from its consumer: Emit serves as Options.OnProgress
// while the consumer drains Subscribe.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel
// of size 16.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 16),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Phase)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Phase)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Phase, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Phase)
	}
}
