package batch

import "fmt"

// ProgressStatus is the lifecycle state of a job.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent reports a job state change.
type ProgressEvent struct {
	Job     Job
	Status  ProgressStatus
	Message string
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Job)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Job)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s complete", event.Job)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Job, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Job)
	}
}
