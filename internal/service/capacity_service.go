package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

// CapacityService evaluates group occupancy. It is purely advisory:
// callers decide what to do when a group is full, enforcement lives in
// the decision workflow.
type CapacityService struct {
	logger *zap.Logger
}

// NewCapacityService constructs the service.
func NewCapacityService(logger *zap.Logger) *CapacityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{logger: logger}
}

// IsFull reports whether the group has no seats left. A group with
// capacity zero is always full.
func (s *CapacityService) IsFull(group *models.Group) bool {
	return group.Enrolled() >= group.Capacity
}

// AvailableSeats returns capacity minus enrollment. The value goes
// negative when capacity was lowered below the current roster size.
func (s *CapacityService) AvailableSeats(group *models.Group) int {
	return group.Capacity - group.Enrolled()
}

// OccupancyPercent returns the roster size as a percentage of capacity.
// A zero-capacity group reports 100 so it always alerts.
func (s *CapacityService) OccupancyPercent(group *models.Group) float64 {
	if group.Capacity <= 0 {
		return 100
	}
	return float64(group.Enrolled()) / float64(group.Capacity) * 100
}

// Alert classifies the occupancy of a group.
func (s *CapacityService) Alert(group *models.Group) models.AlertLevel {
	pct := s.OccupancyPercent(group)
	switch {
	case pct >= 100:
		return models.AlertCritico
	case pct >= 80:
		return models.AlertAdvertencia
	default:
		return models.AlertNormal
	}
}

// Enroll adds the student to the in-memory roster when a seat is
// available. It does not persist anything.
func (s *CapacityService) Enroll(group *models.Group, studentID string) bool {
	if group.HasStudent(studentID) {
		return false
	}
	if s.IsFull(group) {
		return false
	}
	group.StudentIDs = append(group.StudentIDs, studentID)
	return true
}

// Withdraw removes the student from the in-memory roster.
func (s *CapacityService) Withdraw(group *models.Group, studentID string) bool {
	for i, id := range group.StudentIDs {
		if id == studentID {
			group.StudentIDs = append(group.StudentIDs[:i], group.StudentIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Occupancy builds the monitoring row for a group.
func (s *CapacityService) Occupancy(group *models.Group) models.GroupOccupancy {
	return models.GroupOccupancy{
		GroupID:        group.ID,
		GroupCode:      group.Code,
		SubjectCode:    group.SubjectCode,
		Capacity:       group.Capacity,
		Enrolled:       group.Enrolled(),
		AvailableSeats: s.AvailableSeats(group),
		Occupancy:      s.OccupancyPercent(group),
		Alert:          s.Alert(group),
	}
}
