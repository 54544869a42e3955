package template

import "time"

// TaskDefinition is one checklist item inside a template. Plans copy these
// fields at assignment time rather than referencing them live.
type TaskDefinition struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
	Note  string `json:"note,omitempty"`
	Index int    `json:"index"`
}

// UsageEntry records one instantiation of a template into a plan.
// The usage ledger is append-only.
type UsageEntry struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

// Template is a reusable, ordered checklist definition.
// Active=false marks a soft-deleted template; inactive templates are
// excluded from all reads and updates.
type Template struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Tasks     []TaskDefinition `json:"tasks"`
	UsedBy    []UsageEntry     `json:"used_by,omitempty"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
