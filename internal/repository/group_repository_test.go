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
)

func newGroupRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGroupRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	groupRows := sqlmock.NewRows([]string{"id", "code", "subject_code", "faculty_id", "professor_id", "capacity", "created_at", "updated_at"}).
		AddRow("group-1", "G01", "MAT101", "FING", nil, 30, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, subject_code")).
		WithArgs("group-1").
		WillReturnRows(groupRows)

	slotRows := sqlmock.NewRows([]string{"id", "group_id", "day_of_week", "start_min", "end_min"}).
		AddRow("slot-1", "group-1", "MONDAY", 480, 600).
		AddRow("slot-2", "group-1", "WEDNESDAY", 480, 600)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, group_id, day_of_week")).
		WithArgs("group-1").
		WillReturnRows(slotRows)

	rosterRows := sqlmock.NewRows([]string{"student_id"}).
		AddRow("student-1").
		AddRow("student-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id FROM group_students")).
		WithArgs("group-1").
		WillReturnRows(rosterRows)

	group, err := repo.FindByID(context.Background(), "group-1")
	require.NoError(t, err)
	require.Equal(t, "group-1", group.ID)
	require.Len(t, group.Slots, 2)
	require.Equal(t, 480, group.Slots[0].StartMin)
	require.Equal(t, 2, group.Enrolled())
	require.True(t, group.HasStudent("student-2"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryTransferStudent(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM group_students")).
		WithArgs("group-1", "student-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_students")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.TransferStudent(context.Background(), "group-1", "group-2", "student-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryTransferRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM group_students")).
		WithArgs("group-1", "student-1").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.TransferStudent(context.Background(), "group-1", "group-2", "student-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryAddStudentWithSeat(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_students")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AddStudent(context.Background(), "group-1", "student-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryAddStudentFullGroup(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	// Capacity guard inside the INSERT filters the row out.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("group-1", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.AddStudent(context.Background(), "group-1", "student-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryAddStudentAlreadyEnrolled(t *testing.T) {
	db, mock, cleanup := newGroupRepoMock(t)
	defer cleanup()

	repo := NewGroupRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO group_students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("group-1", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.AddStudent(context.Background(), "group-1", "student-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
