package plan_test

import (
	"testing"

	"github.com/planward/planward/internal/domain/plan"
	"github.com/stretchr/testify/require"
)

func planWithStatuses(statuses ...plan.TaskStatus) *plan.Plan {
	p := &plan.Plan{ID: "p1", Active: true}
	for i, status := range statuses {
		p.Tasks = append(p.Tasks, plan.Task{ID: mockTaskID(i), Index: i, Status: status})
	}
	return p
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name     string
		statuses []plan.TaskStatus
		want     int
	}{
		{"empty plan", nil, 0},
		{"none completed", []plan.TaskStatus{plan.StatusNotStarted, plan.StatusPending}, 0},
		{"three of five", []plan.TaskStatus{
			plan.StatusCompleted, plan.StatusCompleted, plan.StatusCompleted,
			plan.StatusInProgress, plan.StatusNotStarted,
		}, 60},
		{"one of three rounds", []plan.TaskStatus{
			plan.StatusCompleted, plan.StatusPending, plan.StatusPending,
		}, 33},
		{"two of three rounds up", []plan.TaskStatus{
			plan.StatusCompleted, plan.StatusCompleted, plan.StatusPending,
		}, 67},
		{"all completed", []plan.TaskStatus{plan.StatusCompleted, plan.StatusCompleted}, 100},
		{"cancelled does not count", []plan.TaskStatus{plan.StatusCancelled, plan.StatusCompleted}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planWithStatuses(tt.statuses...)
			got := p.CompletionPercentage()
			require.Equal(t, tt.want, got)
			require.GreaterOrEqual(t, got, 0)
			require.LessOrEqual(t, got, 100)
		})
	}
}

func TestActiveTasks(t *testing.T) {
	p := planWithStatuses(
		plan.StatusCompleted,
		plan.StatusNotStarted,
		plan.StatusCancelled,
		plan.StatusInProgress,
		plan.StatusPending,
	)

	active := p.ActiveTasks()
	require.Len(t, active, 3)
	// Original order is preserved.
	require.Equal(t, 1, active[0].Index)
	require.Equal(t, 3, active[1].Index)
	require.Equal(t, 4, active[2].Index)
}

func TestActiveTasks_AllTerminal(t *testing.T) {
	p := planWithStatuses(plan.StatusCompleted, plan.StatusCancelled)
	require.Empty(t, p.ActiveTasks())
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"not-started", "pending", "in-progress", "completed", "cancelled"} {
		status, err := plan.ParseStatus(valid)
		require.NoError(t, err)
		require.Equal(t, plan.TaskStatus(valid), status)
	}

	_, err := plan.ParseStatus("done")
	require.ErrorIs(t, err, plan.ErrInvalidInput)
	_, err = plan.ParseStatus("")
	require.ErrorIs(t, err, plan.ErrInvalidInput)
}
