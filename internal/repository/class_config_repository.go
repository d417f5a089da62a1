package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// ClassConfigRepository reads the classes enrolled in a plan.
type ClassConfigRepository struct {
	db *sqlx.DB
}

// NewClassConfigRepository constructs the repository.
func NewClassConfigRepository(db *sqlx.DB) *ClassConfigRepository {
	return &ClassConfigRepository{db: db}
}

// ListByPlan returns class configs in configuration order. The order is part of
// the placement contract: earlier classes claim scarce slots first.
func (r *ClassConfigRepository) ListByPlan(ctx context.Context, planID string) ([]models.ClassConfig, error) {
	const query = `SELECT id, plan_id, class_id, room_id, position
FROM class_configs WHERE plan_id = $1 ORDER BY position ASC`
	var configs []models.ClassConfig
	if err := r.db.SelectContext(ctx, &configs, query, planID); err != nil {
		return nil, fmt.Errorf("list class configs: %w", err)
	}
	return configs, nil
}
