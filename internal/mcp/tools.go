package mcp

import (
	"context"
	"errors"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
)

type handler struct {
	services Services
}

func registerTools(server *sdkmcp.Server, services Services) {
	h := &handler{services: services}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_templates",
		Description: "List all active checklist templates",
	}, h.listTemplates)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_template",
		Description: "Get an active template by ID, including its task definitions and usage ledger",
	}, h.getTemplate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_template",
		Description: "Create a checklist template with ordered tasks",
	}, h.createTemplate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_template",
		Description: "Update an active template's label and/or replace its tasks",
	}, h.updateTemplate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_template",
		Description: "Soft-delete a template (irreversible; fails if already deleted)",
	}, h.deleteTemplate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "assign_template",
		Description: "Instantiate a template into a dated plan, one task per day from the start date",
	}, h.assignTemplate)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_plans",
		Description: "List active plans, optionally filtered by owner",
	}, h.listPlans)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_plan",
		Description: "Get an active plan by ID, including its dated tasks",
	}, h.getPlan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_plan",
		Description: "Update an active plan's start and/or end date (end must stay after start)",
	}, h.updatePlan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_plan",
		Description: "Soft-delete a plan (irreversible; fails if already deleted)",
	}, h.deletePlan)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "set_task_status",
		Description: "Set the status of one task in a plan (not-started, pending, in-progress, completed, cancelled)",
	}, h.setTaskStatus)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "plan_progress",
		Description: "Get a plan's completion percentage and remaining active tasks",
	}, h.planProgress)
}

type emptyInput struct{}

type templateIDInput struct {
	ID string `json:"id" jsonschema:"template ID"`
}

type planIDInput struct {
	ID string `json:"id" jsonschema:"plan ID"`
}

type taskInput struct {
	Label string `json:"label" jsonschema:"task label"`
	Link  string `json:"link,omitempty" jsonschema:"optional reference link"`
	Note  string `json:"note,omitempty" jsonschema:"optional note"`
}

type createTemplateInput struct {
	Label string      `json:"label" jsonschema:"template label"`
	Tasks []taskInput `json:"tasks,omitempty" jsonschema:"ordered task definitions"`
}

type updateTemplateInput struct {
	ID    string       `json:"id" jsonschema:"template ID"`
	Label *string      `json:"label,omitempty" jsonschema:"new label"`
	Tasks *[]taskInput `json:"tasks,omitempty" jsonschema:"replacement task definitions"`
}

type assignTemplateInput struct {
	TemplateID string `json:"template_id" jsonschema:"template ID"`
	OwnerID    string `json:"owner_id,omitempty" jsonschema:"plan owner; defaults to the authenticated user"`
	StartDate  string `json:"start_date" jsonschema:"start date, YYYY-MM-DD"`
}

type listPlansInput struct {
	OwnerID string `json:"owner_id,omitempty" jsonschema:"filter by owner"`
}

type updatePlanInput struct {
	ID        string  `json:"id" jsonschema:"plan ID"`
	StartDate *string `json:"start_date,omitempty" jsonschema:"new start date, YYYY-MM-DD"`
	EndDate   *string `json:"end_date,omitempty" jsonschema:"new end date, YYYY-MM-DD"`
}

type setTaskStatusInput struct {
	PlanID string `json:"plan_id" jsonschema:"plan ID"`
	TaskID string `json:"task_id" jsonschema:"task ID"`
	Status string `json:"status" jsonschema:"new status"`
}

type templateListOutput struct {
	Templates []template.Template `json:"templates"`
}

type planListOutput struct {
	Plans []plan.Plan `json:"plans"`
}

type assignOutput struct {
	Plan *plan.Plan `json:"plan"`
	// Warning is set when the plan was persisted but the template usage
	// ledger append failed; the plan must not be re-created.
	Warning string `json:"warning,omitempty"`
}

type deleteOutput struct {
	Deleted bool `json:"deleted"`
}

type progressOutput struct {
	CompletionPercentage int         `json:"completion_percentage"`
	ActiveTasks          []plan.Task `json:"active_tasks"`
}

func (h *handler) listTemplates(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, templateListOutput, error) {
	templates, err := h.services.Templates.List(ctx)
	if err != nil {
		return nil, templateListOutput{}, err
	}
	if templates == nil {
		templates = []template.Template{}
	}
	return nil, templateListOutput{Templates: templates}, nil
}

func (h *handler) getTemplate(ctx context.Context, _ *sdkmcp.CallToolRequest, in templateIDInput) (*sdkmcp.CallToolResult, *template.Template, error) {
	tpl, err := h.services.Templates.Get(ctx, in.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, tpl, nil
}

func (h *handler) createTemplate(ctx context.Context, _ *sdkmcp.CallToolRequest, in createTemplateInput) (*sdkmcp.CallToolResult, *template.Template, error) {
	tpl, err := h.services.Templates.Create(ctx, template.CreateRequest{
		Label: in.Label,
		Tasks: toTaskInputs(in.Tasks),
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, tpl, nil
}

func (h *handler) updateTemplate(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateTemplateInput) (*sdkmcp.CallToolResult, *template.Template, error) {
	req := template.UpdateRequest{ID: in.ID, Label: in.Label}
	if in.Tasks != nil {
		tasks := toTaskInputs(*in.Tasks)
		req.Tasks = &tasks
	}
	tpl, err := h.services.Templates.Update(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return nil, tpl, nil
}

func (h *handler) deleteTemplate(ctx context.Context, _ *sdkmcp.CallToolRequest, in templateIDInput) (*sdkmcp.CallToolResult, deleteOutput, error) {
	if err := h.services.Templates.SoftDelete(ctx, in.ID); err != nil {
		return nil, deleteOutput{}, err
	}
	return nil, deleteOutput{Deleted: true}, nil
}

func (h *handler) assignTemplate(ctx context.Context, _ *sdkmcp.CallToolRequest, in assignTemplateInput) (*sdkmcp.CallToolResult, assignOutput, error) {
	ownerID := in.OwnerID
	if ownerID == "" {
		ownerID = getUserID(ctx)
	}

	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, assignOutput{}, err
	}

	p, err := h.services.Plans.Assign(ctx, plan.AssignRequest{
		TemplateID: in.TemplateID,
		OwnerID:    ownerID,
		StartDate:  startDate,
	})
	if err != nil {
		var partial *plan.PartialAssignError
		if errors.As(err, &partial) {
			return nil, assignOutput{Plan: partial.Plan, Warning: partial.Error()}, nil
		}
		return nil, assignOutput{}, err
	}
	return nil, assignOutput{Plan: p}, nil
}

func (h *handler) listPlans(ctx context.Context, _ *sdkmcp.CallToolRequest, in listPlansInput) (*sdkmcp.CallToolResult, planListOutput, error) {
	plans, err := h.services.Plans.List(ctx, in.OwnerID)
	if err != nil {
		return nil, planListOutput{}, err
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	return nil, planListOutput{Plans: plans}, nil
}

func (h *handler) getPlan(ctx context.Context, _ *sdkmcp.CallToolRequest, in planIDInput) (*sdkmcp.CallToolResult, *plan.Plan, error) {
	p, err := h.services.Plans.Get(ctx, in.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, p, nil
}

func (h *handler) updatePlan(ctx context.Context, _ *sdkmcp.CallToolRequest, in updatePlanInput) (*sdkmcp.CallToolResult, *plan.Plan, error) {
	req := plan.UpdateRequest{ID: in.ID}
	if in.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *in.StartDate)
		if err != nil {
			return nil, nil, err
		}
		req.StartDate = &startDate
	}
	if in.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *in.EndDate)
		if err != nil {
			return nil, nil, err
		}
		req.EndDate = &endDate
	}
	p, err := h.services.Plans.Update(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return nil, p, nil
}

func (h *handler) deletePlan(ctx context.Context, _ *sdkmcp.CallToolRequest, in planIDInput) (*sdkmcp.CallToolResult, deleteOutput, error) {
	if err := h.services.Plans.SoftDelete(ctx, in.ID); err != nil {
		return nil, deleteOutput{}, err
	}
	return nil, deleteOutput{Deleted: true}, nil
}

func (h *handler) setTaskStatus(ctx context.Context, _ *sdkmcp.CallToolRequest, in setTaskStatusInput) (*sdkmcp.CallToolResult, *plan.Plan, error) {
	status, err := plan.ParseStatus(in.Status)
	if err != nil {
		return nil, nil, err
	}
	p, err := h.services.Plans.SetTaskStatus(ctx, plan.SetTaskStatusRequest{
		PlanID: in.PlanID,
		TaskID: in.TaskID,
		Status: status,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, p, nil
}

func (h *handler) planProgress(ctx context.Context, _ *sdkmcp.CallToolRequest, in planIDInput) (*sdkmcp.CallToolResult, progressOutput, error) {
	p, err := h.services.Plans.Get(ctx, in.ID)
	if err != nil {
		return nil, progressOutput{}, err
	}
	active := p.ActiveTasks()
	if active == nil {
		active = []plan.Task{}
	}
	return nil, progressOutput{
		CompletionPercentage: p.CompletionPercentage(),
		ActiveTasks:          active,
	}, nil
}

func toTaskInputs(inputs []taskInput) []template.TaskInput {
	tasks := make([]template.TaskInput, len(inputs))
	for i, task := range inputs {
		tasks[i] = template.TaskInput{Label: task.Label, Link: task.Link, Note: task.Note}
	}
	return tasks
}
