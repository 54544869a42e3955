package plan

import (
	"math"
	"time"
)

// Task is the per-plan, dated, stateful copy of a template task definition.
type Task struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Link         string     `json:"link,omitempty"`
	Note         string     `json:"note,omitempty"`
	Index        int        `json:"index"`
	AssignedDate time.Time  `json:"assigned_date"`
	Status       TaskStatus `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Plan is a dated, per-user instantiation of a template. It exclusively owns
// its tasks; they are copies taken at assignment time, not references into
// the template.
type Plan struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	TemplateID string    `json:"template_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Tasks      []Task    `json:"tasks"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ActiveTasks returns the tasks that are neither completed nor cancelled,
// preserving order.
func (p *Plan) ActiveTasks() []Task {
	var active []Task
	for _, task := range p.Tasks {
		if !task.Status.Terminal() {
			active = append(active, task)
		}
	}
	return active
}

// CompletionPercentage returns round(100 * completed / total), or 0 for a
// plan with no tasks.
func (p *Plan) CompletionPercentage() int {
	if len(p.Tasks) == 0 {
		return 0
	}
	completed := 0
	for _, task := range p.Tasks {
		if task.Status == StatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(p.Tasks)) * 100))
}
