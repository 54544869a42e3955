package plan

import (
	"context"

	"github.com/planward/planward/internal/domain/template"
)

// Repository provides persistence for plans. GetActive, Update and
// SoftDelete are scoped to active plans only.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetActive(ctx context.Context, id string) (*Plan, error)
	ListActive(ctx context.Context, ownerID string) ([]Plan, error)
	Update(ctx context.Context, p *Plan) error
	SoftDelete(ctx context.Context, id string) error
}

// TemplateRepository provides the template operations the assignment
// engine needs.
type TemplateRepository interface {
	GetActive(ctx context.Context, id string) (*template.Template, error)
	AppendUsage(ctx context.Context, templateID string, entry template.UsageEntry) error
}
