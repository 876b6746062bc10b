package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type calendarRepoStub struct {
	windows []models.CalendarWindow
}

func (s *calendarRepoStub) ListByFaculty(ctx context.Context, facultyID string) ([]models.CalendarWindow, error) {
	return s.windows, nil
}

func (s *calendarRepoStub) Upsert(ctx context.Context, window *models.CalendarWindow) error {
	s.windows = append(s.windows, *window)
	return nil
}

func TestCalendarConfigureAndIsOpen(t *testing.T) {
	repo := &calendarRepoStub{}
	svc := NewCalendarService(repo, nil, nil)

	window, err := svc.Configure(context.Background(), "FING", dto.ConfigureWindowRequest{
		Kind:      models.WindowAcademic,
		StartDate: "2026-01-15",
		EndDate:   "2026-05-30",
	}, "dean-1")
	require.NoError(t, err)
	require.Equal(t, "FING", window.FacultyID)
	require.Len(t, repo.windows, 1)

	require.True(t, svc.IsOpen("FING", models.WindowAcademic, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)))
	// End date is inclusive through the whole day.
	require.True(t, svc.IsOpen("FING", models.WindowAcademic, time.Date(2026, 5, 30, 23, 0, 0, 0, time.UTC)))
	require.False(t, svc.IsOpen("FING", models.WindowAcademic, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, svc.IsOpen("FING", models.WindowAcademic, time.Date(2026, 1, 14, 23, 59, 0, 0, time.UTC)))
}

func TestCalendarConfigureRejectsInvertedRange(t *testing.T) {
	svc := NewCalendarService(&calendarRepoStub{}, nil, nil)

	_, err := svc.Configure(context.Background(), "FING", dto.ConfigureWindowRequest{
		Kind:      models.WindowSubmission,
		StartDate: "2026-02-10",
		EndDate:   "2026-02-01",
	}, "dean-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrConfiguration.Code, appErr.Code)
}

func TestCalendarConfigureRejectsBadDates(t *testing.T) {
	svc := NewCalendarService(&calendarRepoStub{}, nil, nil)

	_, err := svc.Configure(context.Background(), "FING", dto.ConfigureWindowRequest{
		Kind:      models.WindowSubmission,
		StartDate: "not-a-date",
		EndDate:   "2026-02-01",
	}, "dean-1")
	require.Error(t, err)
}

func TestCalendarUnconfiguredWindowIsClosed(t *testing.T) {
	svc := NewCalendarService(&calendarRepoStub{}, nil, nil)
	require.False(t, svc.IsOpen("FING", models.WindowSubmission, time.Now()))
}

func TestCalendarWarmLoadsPersistedWindows(t *testing.T) {
	repo := &calendarRepoStub{windows: []models.CalendarWindow{{
		FacultyID: "FING",
		Kind:      models.WindowSubmission,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
	}}}
	svc := NewCalendarService(repo, nil, nil)
	require.NoError(t, svc.Warm(context.Background(), "FING"))
	require.True(t, svc.IsOpen("FING", models.WindowSubmission, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)))

	items := svc.Windows("FING", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	require.Len(t, items, 1)
	require.True(t, items[0].Open)
}
