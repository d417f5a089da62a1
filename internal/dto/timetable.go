package dto

import "github.com/skolaris/timetable-api/internal/models"

// GenerateTimetableRequest is the payload for a timetable generation run.
// MaxTeacherLessonsPerDay caps how many lessons a single teacher may be given on
// one day across all classes; zero means uncapped.
type GenerateTimetableRequest struct {
	PlanID                  string `json:"planId" validate:"required"`
	MaxTeacherLessonsPerDay int    `json:"maxTeacherLessonsPerDay" validate:"min=0"`
}

// GenerationResult summarises the outcome of one generation run. VersionID is
// nil when generation could not proceed (no class configs, no lesson periods);
// Detail explains why.
type GenerationResult struct {
	VersionID   *string                  `json:"versionId,omitempty"`
	PlacedCount int                      `json:"placedCount"`
	Unplaced    []models.UnplacedSubject `json:"unplaced"`
	Detail      string                   `json:"detail"`
}

// TimetableVersionQuery filters version listings.
type TimetableVersionQuery struct {
	PlanID string `json:"planId" validate:"required"`
}
