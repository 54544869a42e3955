// Package mcp exposes the template and plan operations as MCP tools for
// agent clients, over stdio or streamable HTTP.
package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
)

// TemplateService defines template operations needed by MCP.
type TemplateService interface {
	Create(ctx context.Context, req template.CreateRequest) (*template.Template, error)
	Get(ctx context.Context, id string) (*template.Template, error)
	List(ctx context.Context) ([]template.Template, error)
	Update(ctx context.Context, req template.UpdateRequest) (*template.Template, error)
	SoftDelete(ctx context.Context, id string) error
}

// PlanService defines plan operations needed by MCP.
type PlanService interface {
	Assign(ctx context.Context, req plan.AssignRequest) (*plan.Plan, error)
	Get(ctx context.Context, id string) (*plan.Plan, error)
	List(ctx context.Context, ownerID string) ([]plan.Plan, error)
	Update(ctx context.Context, req plan.UpdateRequest) (*plan.Plan, error)
	SetTaskStatus(ctx context.Context, req plan.SetTaskStatusRequest) (*plan.Plan, error)
	SoftDelete(ctx context.Context, id string) error
}

// Services contains the domain services needed by MCP.
type Services struct {
	Templates TemplateService
	Plans     PlanService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      IdentityResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

const serverInstructions = `Planward turns reusable checklist templates into dated, per-user plans.
Create a template with ordered tasks, then assign it to an owner with a
start date: each task lands one day after the previous one. Track progress
by setting task statuses; completed and cancelled tasks drop out of the
active set. Deleting a template or plan is a soft delete and cannot be
undone through this API.`

// NewServer creates and configures an MCP server with all tools and
// middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "planward",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	// Stdio runs locally and skips auth.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware("local"))
	}

	registerTools(server, cfg.Services)

	return server
}
