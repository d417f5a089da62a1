package models

import "time"

// PlanStatus represents lifecycle phases for a timetable plan.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "DRAFT"
	PlanStatusGenerated PlanStatus = "GENERATED"
)

// Plan identifies a timetable generation target: one term against one period template.
type Plan struct {
	ID         string     `db:"id" json:"id"`
	TermID     string     `db:"term_id" json:"term_id"`
	TemplateID string     `db:"template_id" json:"template_id"`
	Name       string     `db:"name" json:"name"`
	Status     PlanStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ClassConfig enrols a class into a plan. Position drives placement precedence:
// classes earlier in configuration order get first claim on scarce slots.
type ClassConfig struct {
	ID       string  `db:"id" json:"id"`
	PlanID   string  `db:"plan_id" json:"plan_id"`
	ClassID  string  `db:"class_id" json:"class_id"`
	RoomID   *string `db:"room_id" json:"room_id,omitempty"`
	Position int     `db:"position" json:"position"`
}

// SubjectQuota is the target weekly lesson-period count for a (class, subject) pair.
// Position preserves insertion order, which seeds the candidate tie-break.
type SubjectQuota struct {
	ID            string `db:"id" json:"id"`
	PlanID        string `db:"plan_id" json:"plan_id"`
	ClassID       string `db:"class_id" json:"class_id"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	WeeklyPeriods int    `db:"weekly_periods" json:"weekly_periods"`
	Position      int    `db:"position" json:"position"`
}
