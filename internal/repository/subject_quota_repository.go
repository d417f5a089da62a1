package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// SubjectQuotaRepository reads weekly period quotas for a plan.
type SubjectQuotaRepository struct {
	db *sqlx.DB
}

// NewSubjectQuotaRepository constructs the repository.
func NewSubjectQuotaRepository(db *sqlx.DB) *SubjectQuotaRepository {
	return &SubjectQuotaRepository{db: db}
}

// ListByPlan returns quotas in insertion order. The order matters: it is the
// stable tie-break between candidates with equal priority and remaining count.
func (r *SubjectQuotaRepository) ListByPlan(ctx context.Context, planID string) ([]models.SubjectQuota, error) {
	const query = `SELECT id, plan_id, class_id, subject_id, weekly_periods, position
FROM subject_quotas WHERE plan_id = $1 ORDER BY position ASC`
	var quotas []models.SubjectQuota
	if err := r.db.SelectContext(ctx, &quotas, query, planID); err != nil {
		return nil, fmt.Errorf("list subject quotas: %w", err)
	}
	return quotas, nil
}
