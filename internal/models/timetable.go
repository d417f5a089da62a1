package models

import "time"

// TimetableVersion is one immutable generated snapshot for a plan. Versions are
// created non-current; promotion happens through a separate operation.
type TimetableVersion struct {
	ID        string    `db:"id" json:"id"`
	PlanID    string    `db:"plan_id" json:"plan_id"`
	Label     string    `db:"label" json:"label"`
	IsCurrent bool      `db:"is_current" json:"is_current"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntry is one placed lesson inside a version. Entries are written only
// during generation and never mutated afterwards.
type TimetableEntry struct {
	ID        string    `db:"id" json:"id"`
	PlanID    string    `db:"plan_id" json:"plan_id" validate:"required"`
	VersionID string    `db:"version_id" json:"version_id" validate:"required"`
	TermID    string    `db:"term_id" json:"term_id" validate:"required"`
	ClassID   string    `db:"class_id" json:"class_id" validate:"required"`
	SubjectID string    `db:"subject_id" json:"subject_id" validate:"required"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week" validate:"required,min=1,max=7"`
	SlotIndex int       `db:"slot_index" json:"slot_index" validate:"required,min=1"`
	StartTime string    `db:"start_time" json:"start_time" validate:"required"`
	EndTime   string    `db:"end_time" json:"end_time" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UnplacedSubject reports a (class, subject) pair whose quota was not fully
// satisfied by the end of a generation run.
type UnplacedSubject struct {
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`
	Remaining int    `json:"remaining"`
}
