package models

import "time"

// TeacherAssignment links a teacher to a class/subject pair. Multiple rows may
// exist for the same pair; the engine resolves them to at most one teacher.
type TeacherAssignment struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
