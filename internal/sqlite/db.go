package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. Templates and plans carry an `active`
// flag for soft deletion; their child rows (task definitions, task
// instances, ledger entries) are owned by the parent aggregate and always
// read and written with it.
func (db *DB) RunMigrations() error {
	migration := `
-- Templates
CREATE TABLE templates (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX idx_templates_active ON templates(active);

-- Task definitions owned by a template
CREATE TABLE template_tasks (
    id TEXT PRIMARY KEY,
    template_id TEXT NOT NULL,
    label TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(id)
);
CREATE INDEX idx_template_tasks ON template_tasks(template_id, ordinal);

-- Append-only usage ledger
CREATE TABLE template_usage (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    template_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    used_at TIMESTAMP NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(id)
);
CREATE INDEX idx_template_usage ON template_usage(template_id);

-- Plans
CREATE TABLE plans (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    template_id TEXT NOT NULL,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    FOREIGN KEY (template_id) REFERENCES templates(id)
);
CREATE INDEX idx_owner_plans ON plans(owner_id, start_date);
CREATE INDEX idx_plans_active ON plans(active);

-- Task instances owned by a plan
CREATE TABLE plan_tasks (
    id TEXT PRIMARY KEY,
    plan_id TEXT NOT NULL,
    label TEXT NOT NULL,
    link TEXT NOT NULL DEFAULT '',
    note TEXT NOT NULL DEFAULT '',
    ordinal INTEGER NOT NULL,
    assigned_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('not-started', 'pending', 'in-progress', 'completed', 'cancelled')),
    completed_at TIMESTAMP,
    FOREIGN KEY (plan_id) REFERENCES plans(id)
);
CREATE INDEX idx_plan_tasks ON plan_tasks(plan_id, ordinal);
CREATE INDEX idx_plan_task_status ON plan_tasks(plan_id, status);

-- API tokens for authentication
CREATE TABLE api_tokens (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    description TEXT,
    created_at TIMESTAMP NOT NULL,
    last_used TIMESTAMP
);
CREATE INDEX idx_user_tokens ON api_tokens(user_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
