package template

import "context"

// Repository provides persistence for templates. Get, Update and SoftDelete
// are scoped to active templates only.
type Repository interface {
	Create(ctx context.Context, tpl *Template) error
	GetActive(ctx context.Context, id string) (*Template, error)
	ListActive(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, tpl *Template) error
	SoftDelete(ctx context.Context, id string) error
	AppendUsage(ctx context.Context, templateID string, entry UsageEntry) error
}
