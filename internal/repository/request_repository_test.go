package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "receipt_code", "student_id", "faculty_id", "kind", "subject_code",
		"source_group_id", "target_group_id", "status", "priority", "reason",
		"reviewer_notes", "reviewed_by", "reviewed_at", "created_at", "updated_at",
	})
}

func TestRequestRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO change_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	target := "group-2"
	request := &models.ChangeRequest{
		ReceiptCode:   "SOL-2026-0001",
		StudentID:     "student-1",
		FacultyID:     "FING",
		Kind:          models.RequestGroupChange,
		SubjectCode:   "MAT101",
		TargetGroupID: &target,
		Reason:        "work schedule collides with the morning group",
	}
	require.NoError(t, repo.Create(context.Background(), request))
	require.NotEmpty(t, request.ID)
	require.Equal(t, models.RequestPending, request.Status)

	rows := requestRows().AddRow(
		request.ID, "SOL-2026-0001", "student-1", "FING", "GROUP_CHANGE", "MAT101",
		nil, "group-2", "PENDING", 0, request.Reason,
		nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, receipt_code, student_id")).
		WithArgs(request.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, request.ID, found.ID)
	require.Equal(t, models.RequestGroupChange, found.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := requestRows().AddRow(
		"req-1", "SOL-2026-0002", "student-1", "FING", "CANCELLATION", "FIS201",
		"group-3", nil, "PENDING", 2, "medical leave",
		nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, receipt_code, student_id")).
		WithArgs("FING", "PENDING").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.RequestFilter{
		FacultyID: "FING",
		Status:    models.RequestPending,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "req-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateDecisionGuard(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	now := time.Now()
	notes := "approved, seats available"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateDecision(context.Background(), UpdateDecisionParams{
		ID:         "req-1",
		Status:     models.RequestApproved,
		ReviewedBy: "dean-1",
		ReviewedAt: now,
		Notes:      &notes,
	})
	require.NoError(t, err)

	// A second decision hits the status guard and affects no rows.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateDecision(context.Background(), UpdateDecisionParams{
		ID:         "req-1",
		Status:     models.RequestRejected,
		ReviewedBy: "dean-1",
		ReviewedAt: now,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCountPending(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM change_requests")).
		WithArgs("student-1", "MAT101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountPendingForStudent(context.Background(), "student-1", "MAT101")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryRevertDecision(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE change_requests")).
		WithArgs("req-1", models.RequestPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RevertDecision(context.Background(), "req-1", models.RequestPending)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
