package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// TimetableVersionRepository persists generated timetable snapshots.
type TimetableVersionRepository struct {
	db *sqlx.DB
}

// NewTimetableVersionRepository constructs the repository.
func NewTimetableVersionRepository(db *sqlx.DB) *TimetableVersionRepository {
	return &TimetableVersionRepository{db: db}
}

func (r *TimetableVersionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new version. New versions are never current; promotion is a
// separate operation.
func (r *TimetableVersionRepository) Create(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if version == nil {
		return fmt.Errorf("version payload is nil")
	}
	if version.PlanID == "" {
		return fmt.Errorf("plan_id is required")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	version.IsCurrent = false

	const query = `INSERT INTO timetable_versions (id, plan_id, label, is_current, created_at)
VALUES (:id, :plan_id, :label, :is_current, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, version); err != nil {
		return fmt.Errorf("insert timetable version: %w", err)
	}
	return nil
}

// ListByPlan returns all versions for a plan, newest first.
func (r *TimetableVersionRepository) ListByPlan(ctx context.Context, planID string) ([]models.TimetableVersion, error) {
	const query = `SELECT id, plan_id, label, is_current, created_at
FROM timetable_versions WHERE plan_id = $1 ORDER BY created_at DESC`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query, planID); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// FindByID loads a version by its identifier.
func (r *TimetableVersionRepository) FindByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	const query = `SELECT id, plan_id, label, is_current, created_at FROM timetable_versions WHERE id = $1`
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, id); err != nil {
		return nil, err
	}
	return &version, nil
}

// SetCurrent promotes a version, demoting any sibling that currently holds the flag.
func (r *TimetableVersionRepository) SetCurrent(ctx context.Context, exec sqlx.ExtContext, planID, versionID string) error {
	target := r.exec(exec)

	const demote = `UPDATE timetable_versions SET is_current = FALSE WHERE plan_id = $1 AND is_current = TRUE`
	if _, err := target.ExecContext(ctx, demote, planID); err != nil {
		return fmt.Errorf("demote current timetable version: %w", err)
	}

	const promote = `UPDATE timetable_versions SET is_current = TRUE WHERE id = $1 AND plan_id = $2`
	result, err := target.ExecContext(ctx, promote, versionID, planID)
	if err != nil {
		return fmt.Errorf("promote timetable version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable version rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
