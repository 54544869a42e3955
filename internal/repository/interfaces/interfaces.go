package interfaces

import (
	"context"

	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
)

// TemplateRepository manages template persistence. Reads, updates and
// soft-deletes are scoped to active templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *template.Template) error
	GetActive(ctx context.Context, id string) (*template.Template, error)
	ListActive(ctx context.Context) ([]template.Template, error)
	Update(ctx context.Context, tpl *template.Template) error
	SoftDelete(ctx context.Context, id string) error
	AppendUsage(ctx context.Context, templateID string, entry template.UsageEntry) error
}

// PlanRepository manages plan persistence. Reads, updates and soft-deletes
// are scoped to active plans.
type PlanRepository interface {
	Create(ctx context.Context, p *plan.Plan) error
	GetActive(ctx context.Context, id string) (*plan.Plan, error)
	ListActive(ctx context.Context, ownerID string) ([]plan.Plan, error)
	Update(ctx context.Context, p *plan.Plan) error
	SoftDelete(ctx context.Context, id string) error
}
