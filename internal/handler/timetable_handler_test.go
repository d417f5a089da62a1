package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/timetable-api/internal/dto"
	"github.com/skolaris/timetable-api/internal/models"
	appErrors "github.com/skolaris/timetable-api/pkg/errors"
)

type generatorMock struct {
	captured dto.GenerateTimetableRequest
	result   *dto.GenerationResult
	err      error
}

func (m *generatorMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationResult, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	versionID := "version-1"
	return &dto.GenerationResult{VersionID: &versionID, PlacedCount: 5, Unplaced: []models.UnplacedSubject{}}, nil
}

type querierMock struct {
	versions   []models.TimetableVersion
	entries    []models.TimetableEntry
	promoted   string
	promoteErr error
	entriesErr error
}

func (m *querierMock) ListVersions(ctx context.Context, planID string) ([]models.TimetableVersion, error) {
	return m.versions, nil
}

func (m *querierMock) GetEntries(ctx context.Context, versionID string) ([]models.TimetableEntry, error) {
	if m.entriesErr != nil {
		return nil, m.entriesErr
	}
	return m.entries, nil
}

func (m *querierMock) Promote(ctx context.Context, versionID string) error {
	if m.promoteErr != nil {
		return m.promoteErr
	}
	m.promoted = versionID
	return nil
}

func newTimetableRouter(generator *generatorMock, querier *querierMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTimetableHandler(generator, querier)
	router := gin.New()
	router.POST("/plans/:id/timetable/generate", h.Generate)
	router.GET("/plans/:id/timetable/versions", h.ListVersions)
	router.GET("/timetable/versions/:id/entries", h.Entries)
	router.PUT("/timetable/versions/:id/current", h.Promote)
	return router
}

func TestTimetableHandlerGenerate(t *testing.T) {
	generator := &generatorMock{}
	router := newTimetableRouter(generator, &querierMock{})

	body := []byte(`{"maxTeacherLessonsPerDay":4}`)
	req, _ := http.NewRequest(http.MethodPost, "/plans/plan-1/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "plan-1", generator.captured.PlanID)
	assert.Equal(t, 4, generator.captured.MaxTeacherLessonsPerDay)
}

func TestTimetableHandlerGenerateEmptyBody(t *testing.T) {
	generator := &generatorMock{}
	router := newTimetableRouter(generator, &querierMock{})

	req, _ := http.NewRequest(http.MethodPost, "/plans/plan-1/timetable/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "plan-1", generator.captured.PlanID)
	assert.Equal(t, 0, generator.captured.MaxTeacherLessonsPerDay)
}

func TestTimetableHandlerGenerateRejectsNegativeCap(t *testing.T) {
	router := newTimetableRouter(&generatorMock{}, &querierMock{})

	body := []byte(`{"maxTeacherLessonsPerDay":-1}`)
	req, _ := http.NewRequest(http.MethodPost, "/plans/plan-1/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGeneratePlanNotFound(t *testing.T) {
	generator := &generatorMock{err: appErrors.Clone(appErrors.ErrNotFound, "plan not found")}
	router := newTimetableRouter(generator, &querierMock{})

	req, _ := http.NewRequest(http.MethodPost, "/plans/missing/timetable/generate", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerListVersions(t *testing.T) {
	querier := &querierMock{
		versions: []models.TimetableVersion{{ID: "version-1", PlanID: "plan-1"}},
	}
	router := newTimetableRouter(&generatorMock{}, querier)

	req, _ := http.NewRequest(http.MethodGet, "/plans/plan-1/timetable/versions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.TimetableVersion `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "version-1", envelope.Data[0].ID)
}

func TestTimetableHandlerEntries(t *testing.T) {
	querier := &querierMock{
		entries: []models.TimetableEntry{{ID: "entry-1", VersionID: "version-1", ClassID: "class-1", SubjectID: "math"}},
	}
	router := newTimetableRouter(&generatorMock{}, querier)

	req, _ := http.NewRequest(http.MethodGet, "/timetable/versions/version-1/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestTimetableHandlerPromote(t *testing.T) {
	querier := &querierMock{}
	router := newTimetableRouter(&generatorMock{}, querier)

	req, _ := http.NewRequest(http.MethodPut, "/timetable/versions/version-1/current", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "version-1", querier.promoted)
}

func TestTimetableHandlerPromoteNotFound(t *testing.T) {
	querier := &querierMock{promoteErr: appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")}
	router := newTimetableRouter(&generatorMock{}, querier)

	req, _ := http.NewRequest(http.MethodPut, "/timetable/versions/missing/current", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
