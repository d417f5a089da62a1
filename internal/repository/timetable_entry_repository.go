package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// TimetableEntryRepository persists placed lessons.
type TimetableEntryRepository struct {
	db *sqlx.DB
}

// NewTimetableEntryRepository constructs the repository.
func NewTimetableEntryRepository(db *sqlx.DB) *TimetableEntryRepository {
	return &TimetableEntryRepository{db: db}
}

func (r *TimetableEntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts one entry, normally inside the generation transaction.
func (r *TimetableEntryRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *models.TimetableEntry) error {
	if entry == nil {
		return fmt.Errorf("entry payload is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const query = `
INSERT INTO timetable_entries (id, plan_id, version_id, term_id, class_id, subject_id, teacher_id, room_id, day_of_week, slot_index, start_time, end_time, created_at)
VALUES (:id, :plan_id, :version_id, :term_id, :class_id, :subject_id, :teacher_id, :room_id, :day_of_week, :slot_index, :start_time, :end_time, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("insert timetable entry: %w", err)
	}
	return nil
}

// ListByVersion returns a version's entries ordered by day, slot, then class.
func (r *TimetableEntryRepository) ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, plan_id, version_id, term_id, class_id, subject_id, teacher_id, room_id, day_of_week, slot_index, start_time, end_time, created_at
FROM timetable_entries WHERE version_id = $1 ORDER BY day_of_week ASC, slot_index ASC, class_id ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, versionID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}
