package plan

import "fmt"

// TaskStatus represents the progress state of a task instance.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not-started"
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values. Transition
// legality between values is intentionally not enforced; any known status
// may be set from any other.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status excludes the task from the active
// task set and the completion denominator's "still open" side.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ParseStatus converts a string into a TaskStatus.
func ParseStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, raw)
	}
	return status, nil
}
