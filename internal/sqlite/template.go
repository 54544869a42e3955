package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/repository"
)

// TemplateRepository implements repository.TemplateRepository for SQLite
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a template together with its task definitions
func (r *TemplateRepository) Create(ctx context.Context, tpl *template.Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO templates (id, label, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Label, tpl.Active, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	if err := insertTemplateTasks(ctx, tx, tpl.ID, tpl.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetActive retrieves an active template by ID, including its task
// definitions and usage ledger
func (r *TemplateRepository) GetActive(ctx context.Context, id string) (*template.Template, error) {
	var tpl template.Template
	err := r.db.QueryRowContext(ctx,
		`SELECT id, label, active, created_at, updated_at FROM templates WHERE id = ? AND active = 1`,
		id,
	).Scan(&tpl.ID, &tpl.Label, &tpl.Active, &tpl.CreatedAt, &tpl.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	tasks, err := r.loadTasks(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	tpl.Tasks = tasks

	usage, err := r.loadUsage(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	tpl.UsedBy = usage

	return &tpl, nil
}

// ListActive returns all active templates with their task definitions and
// usage ledgers
func (r *TemplateRepository) ListActive(ctx context.Context) ([]template.Template, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, active, created_at, updated_at FROM templates WHERE active = 1 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		var tpl template.Template
		if err := rows.Scan(&tpl.ID, &tpl.Label, &tpl.Active, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}

	for i := range templates {
		tasks, err := r.loadTasks(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Tasks = tasks

		usage, err := r.loadUsage(ctx, templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].UsedBy = usage
	}

	return templates, nil
}

// Update saves a template and replaces its task definitions, scoped to
// active templates
func (r *TemplateRepository) Update(ctx context.Context, tpl *template.Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE templates SET label = ?, updated_at = ? WHERE id = ? AND active = 1`,
		tpl.Label, tpl.UpdatedAt, tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM template_tasks WHERE template_id = ?`, tpl.ID); err != nil {
		return fmt.Errorf("failed to clear template tasks: %w", err)
	}
	if err := insertTemplateTasks(ctx, tx, tpl.ID, tpl.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SoftDelete marks an active template inactive. Returns
// repository.ErrNotFound for a missing or already-inactive template.
func (r *TemplateRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE templates SET active = 0 WHERE id = ? AND active = 1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete template: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AppendUsage appends one entry to the template's usage ledger. Ledger rows
// are never updated or removed.
func (r *TemplateRepository) AppendUsage(ctx context.Context, templateID string, entry template.UsageEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO template_usage (template_id, user_id, used_at) VALUES (?, ?, ?)`,
		templateID, entry.UserID, entry.At,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append usage entry: %w", err)
	}
	return nil
}

func (r *TemplateRepository) loadTasks(ctx context.Context, templateID string) ([]template.TaskDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, link, note, ordinal FROM template_tasks WHERE template_id = ? ORDER BY ordinal ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load template tasks: %w", err)
	}
	defer rows.Close()

	var tasks []template.TaskDefinition
	for rows.Next() {
		var def template.TaskDefinition
		if err := rows.Scan(&def.ID, &def.Label, &def.Link, &def.Note, &def.Index); err != nil {
			return nil, fmt.Errorf("failed to scan template task: %w", err)
		}
		tasks = append(tasks, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template task rows: %w", err)
	}
	return tasks, nil
}

func (r *TemplateRepository) loadUsage(ctx context.Context, templateID string) ([]template.UsageEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, used_at FROM template_usage WHERE template_id = ? ORDER BY id ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage ledger: %w", err)
	}
	defer rows.Close()

	var entries []template.UsageEntry
	for rows.Next() {
		var entry template.UsageEntry
		if err := rows.Scan(&entry.UserID, &entry.At); err != nil {
			return nil, fmt.Errorf("failed to scan usage entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage rows: %w", err)
	}
	return entries, nil
}

func insertTemplateTasks(ctx context.Context, tx *sql.Tx, templateID string, tasks []template.TaskDefinition) error {
	for _, def := range tasks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO template_tasks (id, template_id, label, link, note, ordinal) VALUES (?, ?, ?, ?, ?, ?)`,
			def.ID, templateID, def.Label, def.Link, def.Note, def.Index,
		)
		if err != nil {
			return fmt.Errorf("failed to insert template task: %w", err)
		}
	}
	return nil
}
