package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

func newCalendarRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCalendarRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newCalendarRepoMock(t)
	defer cleanup()

	repo := NewCalendarRepository(db)
	rows := sqlmock.NewRows([]string{"id", "faculty_id", "kind", "start_date", "end_date", "updated_by", "updated_at"}).
		AddRow("win-1", "FING", "ACADEMIC", time.Now(), time.Now().AddDate(0, 4, 0), nil, time.Now()).
		AddRow("win-2", "FING", "SUBMISSION", time.Now(), time.Now().AddDate(0, 0, 14), nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_id, kind")).
		WithArgs("FING").
		WillReturnRows(rows)

	windows, err := repo.ListByFaculty(context.Background(), "FING")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.Equal(t, models.WindowAcademic, windows[0].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newCalendarRepoMock(t)
	defer cleanup()

	repo := NewCalendarRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO calendar_windows")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	window := &models.CalendarWindow{
		FacultyID: "FING",
		Kind:      models.WindowSubmission,
		StartDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(context.Background(), window))
	require.NotEmpty(t, window.ID)
	require.False(t, window.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
