package transport_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/planward/planward/internal/clock"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/sqlite"
	"github.com/planward/planward/internal/transport"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:transport_%s?mode=memory&cache=shared", t.Name())
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	templateRepo := sqlite.NewTemplateRepository(db)
	planRepo := sqlite.NewPlanRepository(db)

	clk := clock.Fixed{T: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	templateSvc := template.NewService(templateRepo, clk, nil)
	planSvc := plan.NewService(planRepo, templateRepo, clk, nil)

	// Auth is exercised separately; the router runs open here.
	return transport.NewRouter(templateSvc, planSvc, nil, nil)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createTemplate(t *testing.T, router http.Handler, label string, taskLabels ...string) template.Template {
	t.Helper()

	tasks := make([]map[string]string, len(taskLabels))
	for i, taskLabel := range taskLabels {
		tasks[i] = map[string]string{"label": taskLabel}
	}
	rec, env := doRequest(t, router, http.MethodPost, "/api/templates", map[string]any{
		"label": label,
		"tasks": tasks,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var tpl template.Template
	require.NoError(t, json.Unmarshal(env.Data, &tpl))
	return tpl
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec, _ := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndGetTemplate(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "Sign papers", "Meet the team")

	rec, env := doRequest(t, router, http.MethodGet, "/api/templates/"+tpl.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	var got template.Template
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "Onboarding", got.Label)
	require.Len(t, got.Tasks, 2)
}

func TestCreateTemplate_Validation(t *testing.T) {
	router := newTestRouter(t)
	rec, env := doRequest(t, router, http.MethodPost, "/api/templates", map[string]any{"label": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "VALIDATION", env.Error.Code)
}

func TestGetTemplate_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec, env := doRequest(t, router, http.MethodGet, "/api/templates/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAssignTemplate(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a", "b", "c", "d", "e")

	rec, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id":   "user1",
		"start_date": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var p plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.Len(t, p.Tasks, 5)
	require.Equal(t, "2024-01-01", p.StartDate.Format("2006-01-02"))
	require.Equal(t, "2024-01-05", p.EndDate.Format("2006-01-02"))
	for i, task := range p.Tasks {
		require.Equal(t, p.StartDate.AddDate(0, 0, i).Format("2006-01-02"), task.AssignedDate.Format("2006-01-02"))
		require.Equal(t, plan.StatusNotStarted, task.Status)
	}
}

func TestAssignTemplate_BadDate(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a")

	rec, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id":   "user1",
		"start_date": "January 1st",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION", env.Error.Code)
}

func TestAssignTemplate_EmptyTemplate(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Empty")

	rec, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id":   "user1",
		"start_date": "2024-01-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION", env.Error.Code)
}

func TestSetTaskStatusAndProgress(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a", "b", "c", "d", "e")

	_, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id":   "user1",
		"start_date": "2024-01-01",
	})
	var p plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &p))

	for i := 0; i < 3; i++ {
		rec, _ := doRequest(t, router, http.MethodPut,
			"/api/plans/"+p.ID+"/tasks/"+p.Tasks[i].ID,
			map[string]string{"status": "completed"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodGet, "/api/plans/"+p.ID+"/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress struct {
		CompletionPercentage int         `json:"completion_percentage"`
		ActiveTasks          []plan.Task `json:"active_tasks"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	require.Equal(t, 60, progress.CompletionPercentage)
	require.Len(t, progress.ActiveTasks, 2)
}

func TestSetTaskStatus_UnknownStatus(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a")
	_, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id": "user1", "start_date": "2024-01-01",
	})
	var p plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &p))

	rec, env := doRequest(t, router, http.MethodPut,
		"/api/plans/"+p.ID+"/tasks/"+p.Tasks[0].ID,
		map[string]string{"status": "done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION", env.Error.Code)
}

func TestUpdatePlan_RejectsEndBeforeStart(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a", "b")
	_, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id": "user1", "start_date": "2024-01-01",
	})
	var p plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &p))

	rec, env := doRequest(t, router, http.MethodPut, "/api/plans/"+p.ID, map[string]string{
		"end_date": "2023-12-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION", env.Error.Code)
}

func TestDeletePlanTwice(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a")
	_, env := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
		"owner_id": "user1", "start_date": "2024-01-01",
	})
	var p plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &p))

	rec, _ := doRequest(t, router, http.MethodDelete, "/api/plans/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = doRequest(t, router, http.MethodDelete, "/api/plans/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)

	// Deleted plans disappear from reads too.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/plans/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPlansOwnerFilter(t *testing.T) {
	router := newTestRouter(t)
	tpl := createTemplate(t, router, "Onboarding", "a")
	for _, owner := range []string{"user1", "user2"} {
		rec, _ := doRequest(t, router, http.MethodPost, "/api/templates/"+tpl.ID+"/assign", map[string]any{
			"owner_id": owner, "start_date": "2024-01-01",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	_, env := doRequest(t, router, http.MethodGet, "/api/plans?owner=user1", nil)
	var plans []plan.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 1)
	require.Equal(t, "user1", plans[0].OwnerID)
}
