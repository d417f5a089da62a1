package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableVersionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_versions")).
		WithArgs(sqlmock.AnyArg(), "plan-1", "Generated 2026-01-05 08:00:00", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	version := &models.TimetableVersion{
		PlanID:    "plan-1",
		Label:     "Generated 2026-01-05 08:00:00",
		IsCurrent: true,
	}
	err := repo.Create(context.Background(), nil, version)
	require.NoError(t, err)
	assert.NotEmpty(t, version.ID)
	assert.False(t, version.IsCurrent, "new versions must never be created current")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositoryCreateRequiresPlan(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	err := repo.Create(context.Background(), nil, &models.TimetableVersion{})
	require.Error(t, err)
}

func TestTimetableVersionRepositoryListByPlan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "plan_id", "label", "is_current", "created_at"}).
		AddRow("version-2", "plan-1", "Generated later", true, time.Now()).
		AddRow("version-1", "plan-1", "Generated earlier", false, time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, plan_id, label, is_current, created_at")).
		WithArgs("plan-1").
		WillReturnRows(rows)

	versions, err := repo.ListByPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "version-2", versions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, plan_id, label, is_current, created_at FROM timetable_versions WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositorySetCurrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET is_current = FALSE WHERE plan_id = $1 AND is_current = TRUE")).
		WithArgs("plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET is_current = TRUE WHERE id = $1 AND plan_id = $2")).
		WithArgs("version-1", "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCurrent(context.Background(), nil, "plan-1", "version-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositorySetCurrentUnknownVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET is_current = FALSE")).
		WithArgs("plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_versions SET is_current = TRUE")).
		WithArgs("missing", "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetCurrent(context.Background(), nil, "plan-1", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
