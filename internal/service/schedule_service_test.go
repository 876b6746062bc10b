package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

type groupReaderStub struct {
	groups map[string]*models.Group
}

func (s *groupReaderStub) FindByID(ctx context.Context, id string) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		copy := *g
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *groupReaderStub) ListByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	var out []models.Group
	for _, id := range ids {
		if g, ok := s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

type registrationReaderStub struct {
	regs []models.SubjectRegistration
}

func (s *registrationReaderStub) ActiveRegistrations(ctx context.Context, studentID string) ([]models.SubjectRegistration, error) {
	return s.regs, nil
}

func slot(day string, start, end int) models.TimeSlot {
	return models.TimeSlot{Day: day, StartMin: start, EndMin: end}
}

func strPtr(s string) *string { return &s }

func newScheduleFixture() (*ScheduleService, *groupReaderStub) {
	groups := &groupReaderStub{groups: map[string]*models.Group{
		"enrolled": {
			ID:          "enrolled",
			SubjectCode: "FIS201",
			Slots:       []models.TimeSlot{slot(models.DayMonday, 480, 600)}, // 08:00-10:00
		},
	}}
	regs := &registrationReaderStub{regs: []models.SubjectRegistration{
		{SubjectCode: "FIS201", GroupID: strPtr("enrolled"), Status: models.RegistrationEnCurso},
	}}
	return NewScheduleService(groups, regs, nil), groups
}

func TestScheduleAdjacentSlotsDoNotConflict(t *testing.T) {
	svc, _ := newScheduleFixture()
	candidate := &models.Group{
		ID:    "candidate",
		Slots: []models.TimeSlot{slot(models.DayMonday, 600, 720)}, // 10:00-12:00
	}
	conflicts, err := svc.CheckGroup(context.Background(), "student-1", candidate, "")
	require.NoError(t, err)
	require.Empty(t, conflicts)
}

func TestScheduleOverlappingSlotsConflict(t *testing.T) {
	svc, _ := newScheduleFixture()
	candidate := &models.Group{
		ID:    "candidate",
		Slots: []models.TimeSlot{slot(models.DayMonday, 540, 660)}, // 09:00-11:00
	}
	conflicts, err := svc.CheckGroup(context.Background(), "student-1", candidate, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	require.Equal(t, "enrolled", conflicts[0].GroupID)
	require.Equal(t, "FIS201", conflicts[0].SubjectCode)
}

func TestScheduleIdenticalSlotsConflict(t *testing.T) {
	svc, _ := newScheduleFixture()
	candidate := &models.Group{
		ID:    "candidate",
		Slots: []models.TimeSlot{slot(models.DayMonday, 480, 600)},
	}
	conflicts, err := svc.CheckGroup(context.Background(), "student-1", candidate, "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
}

func TestScheduleDifferentDayNoConflict(t *testing.T) {
	svc, _ := newScheduleFixture()
	candidate := &models.Group{
		ID:    "candidate",
		Slots: []models.TimeSlot{slot(models.DayTuesday, 480, 600)},
	}
	conflicts, err := svc.CheckGroup(context.Background(), "student-1", candidate, "")
	require.NoError(t, err)
	require.Empty(t, conflicts)
}

func TestScheduleExcludesSourceGroup(t *testing.T) {
	// A group change must not collide against the group being left.
	svc, _ := newScheduleFixture()
	candidate := &models.Group{
		ID:    "candidate",
		Slots: []models.TimeSlot{slot(models.DayMonday, 480, 600)},
	}
	conflicts, err := svc.CheckGroup(context.Background(), "student-1", candidate, "enrolled")
	require.NoError(t, err)
	require.Empty(t, conflicts)
}
