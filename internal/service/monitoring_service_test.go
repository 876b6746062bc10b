package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

type facultyGroupListerStub struct {
	groups []models.Group
	calls  int
}

func (s *facultyGroupListerStub) ListByFaculty(ctx context.Context, filter models.GroupFilter) ([]models.Group, error) {
	s.calls++
	return s.groups, nil
}

func TestMonitoringOccupancyReport(t *testing.T) {
	lister := &facultyGroupListerStub{groups: []models.Group{
		{ID: "g1", Code: "G01", SubjectCode: "MAT101", Capacity: 30,
			StudentIDs: make([]string, 12)},
		{ID: "g2", Code: "G02", SubjectCode: "MAT101", Capacity: 10,
			StudentIDs: make([]string, 9)},
		{ID: "g3", Code: "G01", SubjectCode: "FIS201", Capacity: 10,
			StudentIDs: make([]string, 10)},
	}}
	svc := NewMonitoringService(lister, NewCapacityService(nil), nil, 0, nil)

	report, err := svc.Occupancy(context.Background(), models.GroupFilter{FacultyID: "FING"})
	require.NoError(t, err)
	require.Len(t, report.Groups, 3)
	require.Equal(t, 1, report.Advertencia)
	require.Equal(t, 1, report.Critico)
	require.Equal(t, models.AlertNormal, report.Groups[0].Alert)
	require.Equal(t, models.AlertAdvertencia, report.Groups[1].Alert)
	require.Equal(t, models.AlertCritico, report.Groups[2].Alert)
	require.Equal(t, 0, report.Groups[2].AvailableSeats)
}

func TestMonitoringWithoutCacheHitsRepositoryEachTime(t *testing.T) {
	lister := &facultyGroupListerStub{}
	svc := NewMonitoringService(lister, nil, nil, 0, nil)

	_, err := svc.Occupancy(context.Background(), models.GroupFilter{FacultyID: "FING"})
	require.NoError(t, err)
	_, err = svc.Occupancy(context.Background(), models.GroupFilter{FacultyID: "FING"})
	require.NoError(t, err)
	require.Equal(t, 2, lister.calls)
}
