package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/timetable-api/internal/dto"
	"github.com/skolaris/timetable-api/internal/models"
	appErrors "github.com/skolaris/timetable-api/pkg/errors"
	"github.com/skolaris/timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationResult, error)
}

type timetableQuerier interface {
	ListVersions(ctx context.Context, planID string) ([]models.TimetableVersion, error)
	GetEntries(ctx context.Context, versionID string) ([]models.TimetableEntry, error)
	Promote(ctx context.Context, versionID string) error
}

// TimetableHandler exposes timetable generation and version endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	queries   timetableQuerier
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(generator timetableGenerator, queries timetableQuerier) *TimetableHandler {
	return &TimetableHandler{generator: generator, queries: queries}
}

type generateTimetableBody struct {
	MaxTeacherLessonsPerDay int `json:"maxTeacherLessonsPerDay"`
}

// Generate godoc
// @Summary Generate a timetable version for a plan
// @Description Runs one placement pass over the plan's classes and quotas, recording the result as a new non-current version.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body generateTimetableBody false "Generation options"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var body generateTimetableBody
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}
	if body.MaxTeacherLessonsPerDay < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "maxTeacherLessonsPerDay must not be negative"))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), dto.GenerateTimetableRequest{
		PlanID:                  c.Param("id"),
		MaxTeacherLessonsPerDay: body.MaxTeacherLessonsPerDay,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListVersions godoc
// @Summary List timetable versions for a plan
// @Tags Timetables
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/timetable/versions [get]
func (h *TimetableHandler) ListVersions(c *gin.Context) {
	versions, err := h.queries.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// Entries godoc
// @Summary Get entries for a timetable version
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable version ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/versions/{id}/entries [get]
func (h *TimetableHandler) Entries(c *gin.Context) {
	entries, err := h.queries.GetEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Promote godoc
// @Summary Promote a timetable version to current
// @Tags Timetables
// @Param id path string true "Timetable version ID"
// @Success 204
// @Router /timetable/versions/{id}/current [put]
func (h *TimetableHandler) Promote(c *gin.Context) {
	if err := h.queries.Promote(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
