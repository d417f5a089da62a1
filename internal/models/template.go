package models

import (
	"time"

	"github.com/lib/pq"
)

// PeriodSlotKind distinguishes lesson periods from breaks and other gaps.
type PeriodSlotKind string

const (
	PeriodSlotKindLesson PeriodSlotKind = "LESSON"
	PeriodSlotKindBreak  PeriodSlotKind = "BREAK"
)

// Template is a reusable weekly period structure: active weekdays plus ordered slots.
type Template struct {
	ID         string        `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	ActiveDays pq.Int64Array `db:"active_days" json:"active_days"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// PeriodSlot is one scheduled interval in a day. Only LESSON slots participate in placement.
type PeriodSlot struct {
	ID         string         `db:"id" json:"id"`
	TemplateID string         `db:"template_id" json:"template_id"`
	SlotIndex  int            `db:"slot_index" json:"slot_index"`
	StartTime  string         `db:"start_time" json:"start_time"`
	EndTime    string         `db:"end_time" json:"end_time"`
	Kind       PeriodSlotKind `db:"kind" json:"kind"`
}
