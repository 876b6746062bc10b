package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type facultyGroupLister interface {
	ListByFaculty(ctx context.Context, filter models.GroupFilter) ([]models.Group, error)
}

// OccupancyReport aggregates the occupancy rows for one faculty.
type OccupancyReport struct {
	FacultyID   string                  `json:"faculty_id"`
	Groups      []models.GroupOccupancy `json:"groups"`
	Advertencia int                     `json:"advertencia_count"`
	Critico     int                     `json:"critico_count"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// MonitoringService builds occupancy reports for the dean's office.
// Reports are cached because the dashboard polls them frequently.
type MonitoringService struct {
	groups   facultyGroupLister
	capacity *CapacityService
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewMonitoringService constructs the service.
func NewMonitoringService(groups facultyGroupLister, capacity *CapacityService, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *MonitoringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity == nil {
		capacity = NewCapacityService(logger)
	}
	return &MonitoringService{
		groups:   groups,
		capacity: capacity,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func occupancyCacheKey(filter models.GroupFilter) string {
	return fmt.Sprintf("monitoring:occupancy:%s:%s:%d:%d",
		filter.FacultyID, filter.SubjectCode, filter.Page, filter.PageSize)
}

// Occupancy returns the occupancy report for a faculty, serving from
// cache when possible.
func (s *MonitoringService) Occupancy(ctx context.Context, filter models.GroupFilter) (*OccupancyReport, error) {
	key := occupancyCacheKey(filter)
	if s.cache.Enabled() {
		var cached OccupancyReport
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	groups, err := s.groups.ListByFaculty(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty groups")
	}
	report := &OccupancyReport{
		FacultyID:   filter.FacultyID,
		Groups:      make([]models.GroupOccupancy, 0, len(groups)),
		GeneratedAt: time.Now().UTC(),
	}
	for i := range groups {
		row := s.capacity.Occupancy(&groups[i])
		switch row.Alert {
		case models.AlertAdvertencia:
			report.Advertencia++
		case models.AlertCritico:
			report.Critico++
		}
		report.Groups = append(report.Groups, row)
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache occupancy report", zap.Error(err))
		}
	}
	return report, nil
}

// InvalidateFaculty drops cached reports after a roster mutation.
func (s *MonitoringService) InvalidateFaculty(ctx context.Context, facultyID string) {
	if !s.cache.Enabled() {
		return
	}
	pattern := fmt.Sprintf("monitoring:occupancy:%s:*", facultyID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("failed to invalidate occupancy cache",
			zap.String("facultyId", facultyID), zap.Error(err))
	}
}
