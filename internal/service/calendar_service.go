package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type calendarStore interface {
	ListByFaculty(ctx context.Context, facultyID string) ([]models.CalendarWindow, error)
	Upsert(ctx context.Context, window *models.CalendarWindow) error
}

type windowKey struct {
	facultyID string
	kind      models.WindowKind
}

// CalendarService keeps the configured calendar windows per faculty and
// answers whether an instant falls inside them. Reads vastly outnumber
// reconfigurations, so windows are cached in memory behind a RWMutex
// and the repository is only touched on Configure and warm-up.
type CalendarService struct {
	repo   calendarStore
	audit  auditLogger
	logger *zap.Logger

	mu      sync.RWMutex
	windows map[windowKey]models.CalendarWindow
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarStore, audit auditLogger, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{
		repo:    repo,
		audit:   audit,
		logger:  logger,
		windows: make(map[windowKey]models.CalendarWindow),
	}
}

// Warm loads the persisted windows for a faculty into the cache.
func (s *CalendarService) Warm(ctx context.Context, facultyID string) error {
	if s.repo == nil {
		return nil
	}
	windows, err := s.repo.ListByFaculty(ctx, facultyID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar windows")
	}
	s.mu.Lock()
	for _, w := range windows {
		s.windows[windowKey{facultyID: w.FacultyID, kind: w.Kind}] = w
	}
	s.mu.Unlock()
	s.logger.Info("calendar windows loaded",
		zap.String("facultyId", facultyID),
		zap.Int("count", len(windows)))
	return nil
}

// Configure validates and stores a window for a faculty.
func (s *CalendarService) Configure(ctx context.Context, facultyID string, req dto.ConfigureWindowRequest, actorID string) (*models.CalendarWindow, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "startDate must be a valid YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "endDate must be a valid YYYY-MM-DD date")
	}
	// The end date is inclusive through the whole day.
	end = end.Add(24*time.Hour - time.Nanosecond)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "endDate must not precede startDate")
	}
	if req.Kind != models.WindowAcademic && req.Kind != models.WindowSubmission {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "kind must be ACADEMIC or SUBMISSION")
	}

	window := &models.CalendarWindow{
		FacultyID: facultyID,
		Kind:      req.Kind,
		StartDate: start,
		EndDate:   end,
		UpdatedBy: &actorID,
	}
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, window); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store calendar window")
		}
	}
	s.mu.Lock()
	s.windows[windowKey{facultyID: facultyID, kind: req.Kind}] = *window
	s.mu.Unlock()

	if s.audit != nil {
		id := window.ID
		log := &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionWindowConfigure,
			Resource:   "calendar_window",
			ResourceID: &id,
			IPAddress:  "system",
			UserAgent:  "calendar-service",
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to persist audit log", zap.Error(err))
		}
	}
	s.logger.Info("calendar window configured",
		zap.String("facultyId", facultyID),
		zap.String("kind", string(req.Kind)))
	return window, nil
}

// Window returns the configured window for a faculty and kind.
func (s *CalendarService) Window(facultyID string, kind models.WindowKind) (models.CalendarWindow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[windowKey{facultyID: facultyID, kind: kind}]
	return w, ok
}

// IsOpen reports whether the instant falls inside the window. An
// unconfigured window is closed.
func (s *CalendarService) IsOpen(facultyID string, kind models.WindowKind, at time.Time) bool {
	w, ok := s.Window(facultyID, kind)
	if !ok {
		return false
	}
	return w.Contains(at)
}

// Windows lists the configured windows for a faculty, with their open
// state at the given instant.
func (s *CalendarService) Windows(facultyID string, at time.Time) []dto.WindowItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]dto.WindowItem, 0, 2)
	for key, w := range s.windows {
		if key.facultyID != facultyID {
			continue
		}
		items = append(items, dto.WindowItem{
			Kind:      w.Kind,
			StartDate: w.StartDate.Format("2006-01-02"),
			EndDate:   w.EndDate.Format("2006-01-02"),
			Open:      w.Contains(at),
		})
	}
	return items
}
