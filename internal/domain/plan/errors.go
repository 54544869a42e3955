package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanNotFound indicates the plan doesn't exist or is inactive.
	ErrPlanNotFound = errors.New("plan not found or inactive")
	// ErrTaskNotFound indicates the task doesn't exist in the plan.
	ErrTaskNotFound = errors.New("task not found in plan")
	// ErrInvalidInput indicates invalid plan input.
	ErrInvalidInput = errors.New("invalid plan input")
	// ErrEmptyTemplate indicates the template has no task definitions to assign.
	ErrEmptyTemplate = errors.New("template has no tasks to assign")
	// ErrPartialAssign indicates the plan was persisted but the template
	// usage ledger append failed. The plan is durable; retrying the whole
	// assignment would duplicate it.
	ErrPartialAssign = errors.New("plan created but usage ledger append failed")
)

// PartialAssignError carries the already-persisted plan alongside the
// ledger-append failure so callers can report partial success without
// discarding the plan.
type PartialAssignError struct {
	Plan *Plan
	Err  error
}

func (e *PartialAssignError) Error() string {
	return fmt.Sprintf("plan %s created but usage ledger append failed: %v", e.Plan.ID, e.Err)
}

func (e *PartialAssignError) Unwrap() error { return e.Err }

func (e *PartialAssignError) Is(target error) bool { return target == ErrPartialAssign }
