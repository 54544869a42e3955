package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planward/planward/internal/clock"
	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/repository"
)

// Service handles plan business logic, including template assignment.
type Service struct {
	plans     Repository
	templates TemplateRepository
	clock     clock.Clock
	logger    *slog.Logger
}

// NewService creates a new plan service.
func NewService(plans Repository, templates TemplateRepository, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{plans: plans, templates: templates, clock: clk, logger: logger}
}

// AssignRequest describes a template-to-plan assignment request.
type AssignRequest struct {
	TemplateID string
	OwnerID    string
	StartDate  time.Time
}

// UpdateRequest describes a partial plan update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	ID        string
	StartDate *time.Time
	EndDate   *time.Time
}

// SetTaskStatusRequest describes a task status update on a plan.
type SetTaskStatusRequest struct {
	PlanID string
	TaskID string
	Status TaskStatus
}

// Assign instantiates an active template into a new plan for one owner.
//
// Tasks are spaced one day apart: task 0 lands on the start date, task n-1
// on the end date, so endDate = startDate + (n-1) days. This is the
// collapsed form of interpolating each task at offset duration*i/(n-1)
// across the span; with a fixed one-day interval the two are equivalent,
// and for a single-task template the task lands on the start date with a
// zero-length span instead of dividing by zero.
//
// The plan write is durable before the ledger append is attempted. If the
// append fails the plan is returned together with a *PartialAssignError;
// the plan must not be discarded or re-created.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*Plan, error) {
	if strings.TrimSpace(req.TemplateID) == "" || strings.TrimSpace(req.OwnerID) == "" {
		return nil, fmt.Errorf("%w: template id and owner id are required", ErrInvalidInput)
	}
	if req.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}

	tpl, err := s.templates.GetActive(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, template.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("loading template: %w", err)
	}

	if len(tpl.Tasks) == 0 {
		return nil, ErrEmptyTemplate
	}

	defs := make([]template.TaskDefinition, len(tpl.Tasks))
	copy(defs, tpl.Tasks)
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Index < defs[j].Index })

	startDate := req.StartDate
	endDate := startDate.AddDate(0, 0, len(defs)-1)

	tasks := make([]Task, len(defs))
	for i, def := range defs {
		tasks[i] = Task{
			ID:           uuid.NewString(),
			Label:        def.Label,
			Link:         def.Link,
			Note:         def.Note,
			Index:        i,
			AssignedDate: startDate.AddDate(0, 0, i),
			Status:       StatusNotStarted,
		}
	}

	now := s.clock.Now()
	p := &Plan{
		ID:         uuid.NewString(),
		OwnerID:    req.OwnerID,
		TemplateID: tpl.ID,
		StartDate:  startDate,
		EndDate:    endDate,
		Tasks:      tasks,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.plans.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating plan: %w", err)
	}

	entry := template.UsageEntry{UserID: req.OwnerID, At: now}
	if err := s.templates.AppendUsage(ctx, tpl.ID, entry); err != nil {
		s.logger.Warn("usage ledger append failed after plan write",
			"plan_id", p.ID, "template_id", tpl.ID, "error", err)
		return p, &PartialAssignError{Plan: p, Err: err}
	}

	s.logger.Info("template assigned to plan",
		"plan_id", p.ID, "template_id", tpl.ID, "owner_id", req.OwnerID, "tasks", len(tasks))
	return p, nil
}

// Get fetches an active plan by ID.
func (s *Service) Get(ctx context.Context, id string) (*Plan, error) {
	p, err := s.plans.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	return p, nil
}

// List returns active plans, optionally filtered by owner.
func (s *Service) List(ctx context.Context, ownerID string) ([]Plan, error) {
	plans, err := s.plans.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return plans, nil
}

// Update applies a partial update to an active plan. The end date must stay
// strictly after the start date when either is supplied.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Plan, error) {
	p, err := s.plans.GetActive(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = *req.EndDate
	}
	if (req.StartDate != nil || req.EndDate != nil) && !p.EndDate.After(p.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	}
	p.UpdatedAt = s.clock.Now()

	if err := s.plans.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("updating plan: %w", err)
	}

	s.logger.Info("plan updated", "plan_id", p.ID)
	return p, nil
}

// SetTaskStatus sets the status of one task in an active plan. Any known
// status may be set from any other. Entering completed stamps CompletedAt
// from the clock; leaving completed clears it.
func (s *Service) SetTaskStatus(ctx context.Context, req SetTaskStatusRequest) (*Plan, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	p, err := s.plans.GetActive(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	idx := -1
	for i := range p.Tasks {
		if p.Tasks[i].ID == req.TaskID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrTaskNotFound
	}

	task := &p.Tasks[idx]
	switch {
	case req.Status == StatusCompleted && task.Status != StatusCompleted:
		completedAt := s.clock.Now()
		task.CompletedAt = &completedAt
	case req.Status != StatusCompleted && task.Status == StatusCompleted:
		task.CompletedAt = nil
	}
	task.Status = req.Status
	p.UpdatedAt = s.clock.Now()

	if err := s.plans.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("updating task status: %w", err)
	}

	s.logger.Info("task status updated",
		"plan_id", p.ID, "task_id", req.TaskID, "status", req.Status)
	return p, nil
}

// SoftDelete marks an active plan inactive. Deleting a missing or
// already-inactive plan reports ErrPlanNotFound; there is no reactivation
// path.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	if err := s.plans.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("deleting plan: %w", err)
	}
	s.logger.Info("plan soft deleted", "plan_id", id)
	return nil
}
