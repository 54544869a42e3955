package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/planward/planward/internal/clock"
	"github.com/planward/planward/internal/repository"
)

// Service handles template operations.
type Service struct {
	repo   Repository
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a new template service.
func NewService(repo Repository, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, clock: clk, logger: logger}
}

// TaskInput describes one checklist item in a create or update request.
type TaskInput struct {
	Label string
	Link  string
	Note  string
}

// CreateRequest defines template creation inputs.
type CreateRequest struct {
	Label string
	Tasks []TaskInput
}

// UpdateRequest defines a partial template update. Nil fields are left
// unchanged; a non-nil Tasks slice replaces the task definitions wholesale.
type UpdateRequest struct {
	ID    string
	Label *string
	Tasks *[]TaskInput
}

// Create creates a new template with ordinals assigned from input order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Template, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, fmt.Errorf("%w: label is required", ErrInvalidInput)
	}
	for _, task := range req.Tasks {
		if strings.TrimSpace(task.Label) == "" {
			return nil, fmt.Errorf("%w: task label is required", ErrInvalidInput)
		}
	}

	now := s.clock.Now()
	tpl := &Template{
		ID:        uuid.NewString(),
		Label:     req.Label,
		Tasks:     buildTaskDefinitions(req.Tasks),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}

	s.logger.Info("template created", "template_id", tpl.ID, "tasks", len(tpl.Tasks))
	return tpl, nil
}

// Get fetches an active template by ID.
func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	tpl, err := s.repo.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return tpl, nil
}

// List returns all active templates.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	tpls, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return tpls, nil
}

// Update applies a partial update to an active template. Replacing the task
// definitions does not touch existing plans; they hold copies.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Template, error) {
	tpl, err := s.repo.GetActive(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("loading template: %w", err)
	}

	if req.Label != nil {
		if strings.TrimSpace(*req.Label) == "" {
			return nil, fmt.Errorf("%w: label is required", ErrInvalidInput)
		}
		tpl.Label = *req.Label
	}
	if req.Tasks != nil {
		for _, task := range *req.Tasks {
			if strings.TrimSpace(task.Label) == "" {
				return nil, fmt.Errorf("%w: task label is required", ErrInvalidInput)
			}
		}
		tpl.Tasks = buildTaskDefinitions(*req.Tasks)
	}
	tpl.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("updating template: %w", err)
	}

	s.logger.Info("template updated", "template_id", tpl.ID)
	return tpl, nil
}

// SoftDelete marks an active template inactive. Deleting a missing or
// already-inactive template reports ErrTemplateNotFound; there is no
// reactivation path.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("deleting template: %w", err)
	}
	s.logger.Info("template soft deleted", "template_id", id)
	return nil
}

func buildTaskDefinitions(inputs []TaskInput) []TaskDefinition {
	defs := make([]TaskDefinition, len(inputs))
	for i, task := range inputs {
		defs[i] = TaskDefinition{
			ID:    uuid.NewString(),
			Label: task.Label,
			Link:  task.Link,
			Note:  task.Note,
			Index: i,
		}
	}
	return defs
}
