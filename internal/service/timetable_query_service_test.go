package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skolaris/timetable-api/internal/models"
	appErrors "github.com/skolaris/timetable-api/pkg/errors"
)

func TestTimetableQueryServiceListVersions(t *testing.T) {
	versions := &versionReaderStub{
		items: []models.TimetableVersion{
			{ID: "version-2", PlanID: "plan-1"},
			{ID: "version-1", PlanID: "plan-1"},
		},
	}
	service := NewTimetableQueryService(versions, &entryReaderStub{}, nil, nil, time.Minute, zap.NewNop())

	result, err := service.ListVersions(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "version-2", result[0].ID)
}

func TestTimetableQueryServiceListVersionsRequiresPlanID(t *testing.T) {
	service := NewTimetableQueryService(&versionReaderStub{}, &entryReaderStub{}, nil, nil, time.Minute, zap.NewNop())

	_, err := service.ListVersions(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableQueryServiceGetEntriesCachesResult(t *testing.T) {
	versions := &versionReaderStub{
		items: []models.TimetableVersion{{ID: "version-1", PlanID: "plan-1"}},
	}
	entries := &entryReaderStub{
		items: []models.TimetableEntry{
			{ID: "entry-1", VersionID: "version-1", ClassID: "class-1", SubjectID: "math", DayOfWeek: 1, SlotIndex: 1},
		},
	}
	cache := newEntryCacheStub()
	service := NewTimetableQueryService(versions, entries, nil, cache, time.Minute, zap.NewNop())

	first, err := service.GetEntries(context.Background(), "version-1")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, entries.calls)
	assert.Contains(t, cache.values, "timetable:entries:version-1")

	second, err := service.GetEntries(context.Background(), "version-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, entries.calls, "second read should come from cache")
}

func TestTimetableQueryServiceGetEntriesVersionNotFound(t *testing.T) {
	service := NewTimetableQueryService(&versionReaderStub{findErr: sql.ErrNoRows}, &entryReaderStub{}, nil, nil, time.Minute, zap.NewNop())

	_, err := service.GetEntries(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableQueryServicePromote(t *testing.T) {
	versions := &versionReaderStub{
		items: []models.TimetableVersion{{ID: "version-1", PlanID: "plan-1"}},
	}
	tx, mock := newTxProviderMock(t)
	service := NewTimetableQueryService(versions, &entryReaderStub{}, tx, nil, time.Minute, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, service.Promote(context.Background(), "version-1"))
	assert.Equal(t, "version-1", versions.promotedVersion)
	assert.Equal(t, "plan-1", versions.promotedPlan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableQueryServicePromoteUnknownVersion(t *testing.T) {
	tx, _ := newTxProviderMock(t)
	service := NewTimetableQueryService(&versionReaderStub{findErr: sql.ErrNoRows}, &entryReaderStub{}, tx, nil, time.Minute, zap.NewNop())

	err := service.Promote(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Stubs ---

type versionReaderStub struct {
	items           []models.TimetableVersion
	findErr         error
	promotedPlan    string
	promotedVersion string
}

func (s *versionReaderStub) ListByPlan(ctx context.Context, planID string) ([]models.TimetableVersion, error) {
	return s.items, nil
}

func (s *versionReaderStub) FindByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, item := range s.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *versionReaderStub) SetCurrent(ctx context.Context, exec sqlx.ExtContext, planID, versionID string) error {
	s.promotedPlan = planID
	s.promotedVersion = versionID
	return nil
}

type entryReaderStub struct {
	items []models.TimetableEntry
	calls int
}

func (s *entryReaderStub) ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEntry, error) {
	s.calls++
	return s.items, nil
}

type entryCacheStub struct {
	values map[string]string
}

func newEntryCacheStub() *entryCacheStub {
	return &entryCacheStub{values: make(map[string]string)}
}

func (c *entryCacheStub) Get(ctx context.Context, key string) (string, bool) {
	payload, ok := c.values[key]
	return payload, ok
}

func (c *entryCacheStub) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.values[key] = value
}
