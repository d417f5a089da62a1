package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/timetable-api/internal/models"
)

// TeacherAssignmentRepository reads teacher-class-subject links.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// ListByClasses returns all assignment rows for the given classes. Pairs with
// more than one distinct teacher are resolved downstream, not here.
func (r *TeacherAssignmentRepository) ListByClasses(ctx context.Context, classIDs []string) ([]models.TeacherAssignment, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, class_id, subject_id, teacher_id, created_at
FROM teacher_assignments WHERE class_id IN (?) ORDER BY created_at ASC`, classIDs)
	if err != nil {
		return nil, fmt.Errorf("build teacher assignment query: %w", err)
	}
	query = r.db.Rebind(query)
	var assignments []models.TeacherAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher assignments: %w", err)
	}
	return assignments, nil
}
