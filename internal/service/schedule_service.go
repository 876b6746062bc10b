package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Group, error)
}

type registrationReader interface {
	ActiveRegistrations(ctx context.Context, studentID string) ([]models.SubjectRegistration, error)
}

// Conflict describes one detected collision between a candidate slot
// and an occupied one.
type Conflict struct {
	GroupID       string          `json:"group_id"`
	SubjectCode   string          `json:"subject_code"`
	OccupiedSlot  models.TimeSlot `json:"occupied_slot"`
	CandidateSlot models.TimeSlot `json:"candidate_slot"`
}

// ScheduleService detects weekly timetable collisions between a
// candidate group and a student's current schedule.
type ScheduleService struct {
	groups        groupReader
	registrations registrationReader
	logger        *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(groups groupReader, registrations registrationReader, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{groups: groups, registrations: registrations, logger: logger}
}

// slotsOverlap reports whether two slots collide. Intervals are
// half-open, so a block ending at 10:00 does not collide with one
// starting at 10:00.
func slotsOverlap(a, b models.TimeSlot) bool {
	if a.Day != b.Day {
		return false
	}
	return a.StartMin < b.EndMin && b.StartMin < a.EndMin
}

// CheckGroup returns the conflicts between the candidate group and the
// student's active schedule. Slots of excludeGroupID are ignored, which
// lets a group change skip the group being left behind.
func (s *ScheduleService) CheckGroup(ctx context.Context, studentID string, candidate *models.Group, excludeGroupID string) ([]Conflict, error) {
	regs, err := s.registrations.ActiveRegistrations(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student schedule")
	}
	groupIDs := make([]string, 0, len(regs))
	for _, reg := range regs {
		if reg.GroupID == nil || *reg.GroupID == excludeGroupID || *reg.GroupID == candidate.ID {
			continue
		}
		groupIDs = append(groupIDs, *reg.GroupID)
	}
	occupied, err := s.groups.ListByIDs(ctx, groupIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled groups")
	}

	var conflicts []Conflict
	for _, group := range occupied {
		for _, occupiedSlot := range group.Slots {
			for _, candidateSlot := range candidate.Slots {
				if slotsOverlap(occupiedSlot, candidateSlot) {
					conflicts = append(conflicts, Conflict{
						GroupID:       group.ID,
						SubjectCode:   group.SubjectCode,
						OccupiedSlot:  occupiedSlot,
						CandidateSlot: candidateSlot,
					})
				}
			}
		}
	}
	return conflicts, nil
}

// CheckGroupByID resolves the candidate group and runs CheckGroup.
func (s *ScheduleService) CheckGroupByID(ctx context.Context, studentID, candidateGroupID, excludeGroupID string) ([]Conflict, error) {
	candidate, err := s.groups.FindByID(ctx, candidateGroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return s.CheckGroup(ctx, studentID, candidate, excludeGroupID)
}
