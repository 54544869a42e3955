package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
)

// TemplateService defines template operations needed by the HTTP API.
type TemplateService interface {
	Create(ctx context.Context, req template.CreateRequest) (*template.Template, error)
	Get(ctx context.Context, id string) (*template.Template, error)
	List(ctx context.Context) ([]template.Template, error)
	Update(ctx context.Context, req template.UpdateRequest) (*template.Template, error)
	SoftDelete(ctx context.Context, id string) error
}

// PlanService defines plan operations needed by the HTTP API.
type PlanService interface {
	Assign(ctx context.Context, req plan.AssignRequest) (*plan.Plan, error)
	Get(ctx context.Context, id string) (*plan.Plan, error)
	List(ctx context.Context, ownerID string) ([]plan.Plan, error)
	Update(ctx context.Context, req plan.UpdateRequest) (*plan.Plan, error)
	SetTaskStatus(ctx context.Context, req plan.SetTaskStatusRequest) (*plan.Plan, error)
	SoftDelete(ctx context.Context, id string) error
}

// Server wires HTTP handlers for the template and plan APIs.
type Server struct {
	templates TemplateService
	plans     PlanService
}

// NewRouter creates the API router. The auth middleware, when non-nil, is
// applied to everything under /api; /health stays open.
func NewRouter(templates TemplateService, plans PlanService, authMiddleware func(http.Handler) http.Handler, logger *slog.Logger) *chi.Mux {
	srv := &Server{templates: templates, plans: plans}

	r := chi.NewRouter()
	if logger != nil {
		r.Use(requestLogger(logger))
	}

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", srv.handleListTemplates)
			r.Post("/", srv.handleCreateTemplate)
			r.Get("/{id}", srv.handleGetTemplate)
			r.Put("/{id}", srv.handleUpdateTemplate)
			r.Delete("/{id}", srv.handleDeleteTemplate)
			r.Post("/{id}/assign", srv.handleAssignTemplate)
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", srv.handleListPlans)
			r.Get("/{id}", srv.handleGetPlan)
			r.Put("/{id}", srv.handleUpdatePlan)
			r.Delete("/{id}", srv.handleDeletePlan)
			r.Get("/{id}/progress", srv.handlePlanProgress)
			r.Put("/{id}/tasks/{taskID}", srv.handleSetTaskStatus)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type taskInput struct {
	Label string `json:"label"`
	Link  string `json:"link"`
	Note  string `json:"note"`
}

type createTemplateRequest struct {
	Label string      `json:"label"`
	Tasks []taskInput `json:"tasks"`
}

type updateTemplateRequest struct {
	Label *string      `json:"label"`
	Tasks *[]taskInput `json:"tasks"`
}

type assignTemplateRequest struct {
	OwnerID   string `json:"owner_id"`
	StartDate string `json:"start_date"`
}

type updatePlanRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type setTaskStatusRequest struct {
	Status string `json:"status"`
}

type planProgress struct {
	CompletionPercentage int         `json:"completion_percentage"`
	ActiveTasks          []plan.Task `json:"active_tasks"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if templates == nil {
		templates = []template.Template{}
	}
	writeData(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	tpl, err := s.templates.Create(r.Context(), template.CreateRequest{
		Label: req.Label,
		Tasks: toTaskInputs(req.Tasks),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, tpl)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req updateTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	update := template.UpdateRequest{ID: chi.URLParam(r, "id"), Label: req.Label}
	if req.Tasks != nil {
		tasks := toTaskInputs(*req.Tasks)
		update.Tasks = &tasks
	}

	tpl, err := s.templates.Update(r.Context(), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "template soft deleted")
}

func (s *Server) handleAssignTemplate(w http.ResponseWriter, r *http.Request) {
	var req assignTemplateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID, _ = UserFromContext(r.Context())
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	p, err := s.plans.Assign(r.Context(), plan.AssignRequest{
		TemplateID: chi.URLParam(r, "id"),
		OwnerID:    ownerID,
		StartDate:  startDate,
	})
	if err != nil {
		var partial *plan.PartialAssignError
		if errors.As(err, &partial) {
			// The plan is durable; report partial success so the caller
			// doesn't retry the whole assignment and duplicate it.
			writeJSON(w, http.StatusMultiStatus, envelope{
				Success: false,
				Data:    partial.Plan,
				Error:   &apiError{Code: codePartialFailure, Message: partial.Error()},
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), r.URL.Query().Get("owner"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	writeData(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req updatePlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	update := plan.UpdateRequest{ID: chi.URLParam(r, "id")}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		update.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, err.Error())
			return
		}
		update.EndDate = &endDate
	}

	p, err := s.plans.Update(r.Context(), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "plan soft deleted")
}

func (s *Server) handlePlanProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	active := p.ActiveTasks()
	if active == nil {
		active = []plan.Task{}
	}
	writeData(w, http.StatusOK, planProgress{
		CompletionPercentage: p.CompletionPercentage(),
		ActiveTasks:          active,
	})
}

func (s *Server) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req setTaskStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	status, err := plan.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	p, err := s.plans.SetTaskStatus(r.Context(), plan.SetTaskStatusRequest{
		PlanID: chi.URLParam(r, "id"),
		TaskID: chi.URLParam(r, "taskID"),
		Status: status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	return t, nil
}

func toTaskInputs(inputs []taskInput) []template.TaskInput {
	tasks := make([]template.TaskInput, len(inputs))
	for i, task := range inputs {
		tasks[i] = template.TaskInput{Label: task.Label, Link: task.Link, Note: task.Note}
	}
	return tasks
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}
