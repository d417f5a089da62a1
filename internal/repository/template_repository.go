package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// TemplateRepository reads weekly period templates. Templates are read-only to
// the engine.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs the repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByID loads a template with its active-day list.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	const query = `SELECT id, name, active_days, created_at FROM templates WHERE id = $1`
	var template models.Template
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListLessonSlots returns the template's lesson-kind period slots ordered by index.
// Breaks and other non-lesson slots are excluded here; they never take placements.
func (r *TemplateRepository) ListLessonSlots(ctx context.Context, templateID string) ([]models.PeriodSlot, error) {
	const query = `SELECT id, template_id, slot_index, start_time, end_time, kind
FROM period_slots WHERE template_id = $1 AND kind = $2 ORDER BY slot_index ASC`
	var slots []models.PeriodSlot
	if err := r.db.SelectContext(ctx, &slots, query, templateID, models.PeriodSlotKindLesson); err != nil {
		return nil, fmt.Errorf("list lesson slots: %w", err)
	}
	return slots, nil
}
