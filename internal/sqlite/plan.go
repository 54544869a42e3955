package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/repository"
)

// PlanRepository implements repository.PlanRepository for SQLite
type PlanRepository struct {
	db *DB
}

// NewPlanRepository creates a new PlanRepository
func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a plan together with its task instances
func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plans (id, owner_id, template_id, start_date, end_date, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.TemplateID, p.StartDate, p.EndDate, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := insertPlanTasks(ctx, tx, p.ID, p.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetActive retrieves an active plan by ID, including its task instances
func (r *PlanRepository) GetActive(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, template_id, start_date, end_date, active, created_at, updated_at
		 FROM plans WHERE id = ? AND active = 1`,
		id,
	).Scan(&p.ID, &p.OwnerID, &p.TemplateID, &p.StartDate, &p.EndDate, &p.Active, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	tasks, err := r.loadTasks(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks

	return &p, nil
}

// ListActive returns all active plans, optionally filtered by owner
func (r *PlanRepository) ListActive(ctx context.Context, ownerID string) ([]plan.Plan, error) {
	query := `SELECT id, owner_id, template_id, start_date, end_date, active, created_at, updated_at
		 FROM plans WHERE active = 1`
	args := []any{}
	if ownerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY start_date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.TemplateID, &p.StartDate, &p.EndDate, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan rows: %w", err)
	}

	for i := range plans {
		tasks, err := r.loadTasks(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Tasks = tasks
	}

	return plans, nil
}

// Update saves a plan and replaces its task instances, scoped to active
// plans
func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE plans SET owner_id = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE id = ? AND active = 1`,
		p.OwnerID, p.StartDate, p.EndDate, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tasks WHERE plan_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear plan tasks: %w", err)
	}
	if err := insertPlanTasks(ctx, tx, p.ID, p.Tasks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SoftDelete marks an active plan inactive. Returns repository.ErrNotFound
// for a missing or already-inactive plan.
func (r *PlanRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE plans SET active = 0 WHERE id = ? AND active = 1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete plan: %w", err)
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

func (r *PlanRepository) loadTasks(ctx context.Context, planID string) ([]plan.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, link, note, ordinal, assigned_date, status, completed_at
		 FROM plan_tasks WHERE plan_id = ? ORDER BY ordinal ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan tasks: %w", err)
	}
	defer rows.Close()

	var tasks []plan.Task
	for rows.Next() {
		var task plan.Task
		var completedAt sql.NullTime
		if err := rows.Scan(&task.ID, &task.Label, &task.Link, &task.Note, &task.Index,
			&task.AssignedDate, &task.Status, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan task: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			task.CompletedAt = &t
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan task rows: %w", err)
	}
	return tasks, nil
}

func insertPlanTasks(ctx context.Context, tx *sql.Tx, planID string, tasks []plan.Task) error {
	for _, task := range tasks {
		var completedAt any
		if task.CompletedAt != nil {
			completedAt = *task.CompletedAt
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO plan_tasks (id, plan_id, label, link, note, ordinal, assigned_date, status, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, planID, task.Label, task.Link, task.Note, task.Index,
			task.AssignedDate, task.Status, completedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert plan task: %w", err)
		}
	}
	return nil
}
