package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

func groupWithSeats(capacity, enrolled int) *models.Group {
	g := &models.Group{ID: "group-1", Code: "G01", SubjectCode: "MAT101", Capacity: capacity}
	for i := 0; i < enrolled; i++ {
		g.StudentIDs = append(g.StudentIDs, "student")
	}
	return g
}

func TestCapacityIsFull(t *testing.T) {
	svc := NewCapacityService(nil)

	cases := []struct {
		name     string
		capacity int
		enrolled int
		full     bool
	}{
		{"seats left", 30, 10, false},
		{"one seat left", 10, 9, false},
		{"exactly full", 10, 10, true},
		{"over capacity", 10, 12, true},
		{"zero capacity is always full", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.full, svc.IsFull(groupWithSeats(tc.capacity, tc.enrolled)))
		})
	}
}

func TestCapacityAvailableSeatsCanGoNegative(t *testing.T) {
	svc := NewCapacityService(nil)
	// Capacity lowered after enrollment: the deficit stays visible.
	require.Equal(t, -2, svc.AvailableSeats(groupWithSeats(10, 12)))
	require.Equal(t, 20, svc.AvailableSeats(groupWithSeats(30, 10)))
}

func TestCapacityAlertLevels(t *testing.T) {
	svc := NewCapacityService(nil)

	require.Equal(t, models.AlertNormal, svc.Alert(groupWithSeats(10, 7)))
	require.Equal(t, models.AlertAdvertencia, svc.Alert(groupWithSeats(10, 8)))
	require.Equal(t, models.AlertAdvertencia, svc.Alert(groupWithSeats(10, 9)))
	require.Equal(t, models.AlertCritico, svc.Alert(groupWithSeats(10, 10)))
	require.Equal(t, models.AlertCritico, svc.Alert(groupWithSeats(0, 0)))
}

func TestCapacityEnrollAndWithdraw(t *testing.T) {
	svc := NewCapacityService(nil)

	g := groupWithSeats(2, 1)
	require.True(t, svc.Enroll(g, "student-2"))
	require.False(t, svc.Enroll(g, "student-2"), "already enrolled")
	require.False(t, svc.Enroll(g, "student-3"), "group is now full")

	require.True(t, svc.Withdraw(g, "student-2"))
	require.False(t, svc.Withdraw(g, "student-2"))
	require.True(t, svc.Enroll(g, "student-3"))
}

func TestCapacityOccupancyRow(t *testing.T) {
	svc := NewCapacityService(nil)
	row := svc.Occupancy(groupWithSeats(20, 18))
	require.Equal(t, 18, row.Enrolled)
	require.Equal(t, 2, row.AvailableSeats)
	require.InDelta(t, 90.0, row.Occupancy, 0.001)
	require.Equal(t, models.AlertAdvertencia, row.Alert)
}
