package mocks

import (
	"context"

	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
	"github.com/stretchr/testify/mock"
)

// TemplateRepository is a mock for repository.TemplateRepository.
type TemplateRepository struct {
	mock.Mock
}

func (m *TemplateRepository) Create(ctx context.Context, tpl *template.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *TemplateRepository) GetActive(ctx context.Context, id string) (*template.Template, error) {
	args := m.Called(ctx, id)
	if tpl, ok := args.Get(0).(*template.Template); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TemplateRepository) ListActive(ctx context.Context) ([]template.Template, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]template.Template); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TemplateRepository) Update(ctx context.Context, tpl *template.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *TemplateRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TemplateRepository) AppendUsage(ctx context.Context, templateID string, entry template.UsageEntry) error {
	args := m.Called(ctx, templateID, entry)
	return args.Error(0)
}

// PlanRepository is a mock for repository.PlanRepository.
type PlanRepository struct {
	mock.Mock
}

func (m *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PlanRepository) GetActive(ctx context.Context, id string) (*plan.Plan, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*plan.Plan); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlanRepository) ListActive(ctx context.Context, ownerID string) ([]plan.Plan, error) {
	args := m.Called(ctx, ownerID)
	if list, ok := args.Get(0).([]plan.Plan); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PlanRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
