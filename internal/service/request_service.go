package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/dto"
	"github.com/noah-isme/registro-academico-api/internal/models"
	"github.com/noah-isme/registro-academico-api/internal/repository"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

type requestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.ChangeRequest, error)
	CountPendingForStudent(ctx context.Context, studentID, subjectCode string) (int, error)
	UpdateDecision(ctx context.Context, params repository.UpdateDecisionParams) error
	RevertDecision(ctx context.Context, id string, status models.RequestStatus) error
}

type rosterStore interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	AddStudent(ctx context.Context, groupID, studentID string) error
	RemoveStudent(ctx context.Context, groupID, studentID string) error
	TransferStudent(ctx context.Context, fromGroupID, toGroupID, studentID string) error
}

type studentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ActiveRegistrations(ctx context.Context, studentID string) ([]models.SubjectRegistration, error)
	CreateRegistration(ctx context.Context, reg *models.SubjectRegistration) error
	UpdateRegistrationGroup(ctx context.Context, registrationID, groupID string) error
	UpdateRegistrationStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) error
	CurrentSemesterID(ctx context.Context, studentID string) (string, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type calendarGate interface {
	IsOpen(facultyID string, kind models.WindowKind, at time.Time) bool
}

type conflictChecker interface {
	CheckGroup(ctx context.Context, studentID string, candidate *models.Group, excludeGroupID string) ([]Conflict, error)
}

type seatCounter interface {
	IsFull(group *models.Group) bool
}

type decisionObserver interface {
	ObserveDecision(kind, status string)
	ObserveDenial(code string)
}

type receiptIssuer interface {
	EnqueueReceipt(request models.ChangeRequest)
}

// keyedMutex serialises work per string key. Decisions touching the
// same group or student take the same lock, decisions on unrelated
// groups proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// RequestService orchestrates the change request workflow: students
// submit, the dean's office decides, approved requests mutate rosters
// and registrations.
type RequestService struct {
	repo     requestStore
	groups   rosterStore
	students studentStore
	audit    auditLogger
	calendar calendarGate
	schedule conflictChecker
	capacity seatCounter
	metrics  decisionObserver
	receipts receiptIssuer
	logger   *zap.Logger

	groupLocks   *keyedMutex
	studentLocks *keyedMutex
}

// RequestServiceOption configures optional collaborators.
type RequestServiceOption func(*RequestService)

// WithDecisionObserver wires the metrics recorder.
func WithDecisionObserver(observer decisionObserver) RequestServiceOption {
	return func(s *RequestService) {
		if observer != nil {
			s.metrics = observer
		}
	}
}

// WithReceiptIssuer wires asynchronous receipt generation.
func WithReceiptIssuer(issuer receiptIssuer) RequestServiceOption {
	return func(s *RequestService) {
		if issuer != nil {
			s.receipts = issuer
		}
	}
}

// NewRequestService constructs the service.
func NewRequestService(
	repo requestStore,
	groups rosterStore,
	students studentStore,
	audit auditLogger,
	calendar calendarGate,
	schedule conflictChecker,
	capacity seatCounter,
	logger *zap.Logger,
	opts ...RequestServiceOption,
) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RequestService{
		repo:         repo,
		groups:       groups,
		students:     students,
		audit:        audit,
		calendar:     calendar,
		schedule:     schedule,
		capacity:     capacity,
		logger:       logger,
		groupLocks:   newKeyedMutex(),
		studentLocks: newKeyedMutex(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Submit registers a new change request for the acting student.
func (s *RequestService) Submit(ctx context.Context, req dto.CreateRequestRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !models.HasCapability(actor.Role, models.CapSubmitRequests) {
		return nil, appErrors.ErrForbidden
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	now := time.Now().UTC()
	if !s.calendar.IsOpen(student.FacultyID, models.WindowSubmission, now) {
		return nil, appErrors.ErrDeadlineExpired
	}
	if !s.calendar.IsOpen(student.FacultyID, models.WindowAcademic, now) {
		return nil, appErrors.ErrOutOfCalendar
	}

	if err := s.validateSubmission(ctx, req, student); err != nil {
		return nil, err
	}

	pending, err := s.repo.CountPendingForStudent(ctx, student.ID, req.SubjectCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending requests")
	}
	if pending > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an open request already exists for this subject")
	}

	request := &models.ChangeRequest{
		ReceiptCode: receiptCode(now),
		StudentID:   student.ID,
		FacultyID:   student.FacultyID,
		Kind:        req.Kind,
		SubjectCode: req.SubjectCode,
		Status:      models.RequestPending,
		Priority:    req.Priority,
		Reason:      strings.TrimSpace(req.Reason),
	}
	if req.SourceGroupID != "" {
		src := req.SourceGroupID
		request.SourceGroupID = &src
	}
	if req.TargetGroupID != "" {
		dst := req.TargetGroupID
		request.TargetGroupID = &dst
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionRequestSubmit,
		Resource:   "change_request",
		ResourceID: &request.ID,
	})
	if s.receipts != nil {
		s.receipts.EnqueueReceipt(*request)
	}
	s.logger.Info("change request submitted",
		zap.String("requestId", request.ID),
		zap.String("kind", string(request.Kind)),
		zap.String("studentId", student.ID))
	return request, nil
}

func (s *RequestService) validateSubmission(ctx context.Context, req dto.CreateRequestRequest, student *models.Student) error {
	regs, err := s.students.ActiveRegistrations(ctx, student.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	active := activeRegistrationFor(regs, req.SubjectCode)

	switch req.Kind {
	case models.RequestNewEnrollment:
		if req.TargetGroupID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "targetGroupId is required for a new enrollment")
		}
		if active != nil {
			return appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in this subject")
		}
	case models.RequestGroupChange:
		if req.SourceGroupID == "" || req.TargetGroupID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "sourceGroupId and targetGroupId are required for a group change")
		}
		if req.SourceGroupID == req.TargetGroupID {
			return appErrors.Clone(appErrors.ErrValidation, "source and target group must differ")
		}
		if active == nil || active.GroupID == nil || *active.GroupID != req.SourceGroupID {
			return appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the source group")
		}
	case models.RequestCancellation:
		if req.SourceGroupID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "sourceGroupId is required for a cancellation")
		}
		if active == nil || active.GroupID == nil || *active.GroupID != req.SourceGroupID {
			return appErrors.Clone(appErrors.ErrValidation, "student is not enrolled in the source group")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unsupported request kind")
	}
	return nil
}

// List returns requests visible to the actor. Students only see their
// own, reviewers see the whole faculty.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery, actor *models.JWTClaims) ([]models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	filter := models.RequestFilter{
		Status:   query.Status,
		Kind:     query.Kind,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	switch {
	case models.HasCapability(actor.Role, models.CapReviewRequests):
		filter.FacultyID = actor.FacultyID
		filter.StudentID = query.StudentID
	case actor.Role == models.RoleEstudiante:
		student, err := s.students.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		filter.StudentID = student.ID
	default:
		return nil, appErrors.ErrForbidden
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// Get returns one request enforcing visibility.
func (s *RequestService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if models.HasCapability(actor.Role, models.CapReviewRequests) {
		if request.FacultyID != actor.FacultyID {
			return nil, appErrors.ErrForbidden
		}
		return request, nil
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil || student.ID != request.StudentID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// Decide applies a dean decision. Every precondition is verified before
// any state is touched, and roster mutations only run once the guarded
// status update succeeded.
func (s *RequestService) Decide(ctx context.Context, id string, req dto.DecideRequest, actor *models.JWTClaims) (*models.ChangeRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !models.HasCapability(actor.Role, models.CapReviewRequests) {
		return nil, appErrors.ErrForbidden
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request.FacultyID != actor.FacultyID {
		return nil, s.denied(request, appErrors.ErrForbidden)
	}
	if request.Status.Terminal() {
		return nil, s.denied(request, appErrors.ErrInvalidTransition)
	}
	if req.Status != models.RequestInReview && req.Status != models.RequestApproved && req.Status != models.RequestRejected {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "status must be IN_REVIEW, APPROVED or REJECTED")
	}

	now := time.Now().UTC()

	unlockStudent := s.studentLocks.lock(request.StudentID)
	defer unlockStudent()
	if request.TargetGroupID != nil {
		unlockGroup := s.groupLocks.lock(*request.TargetGroupID)
		defer unlockGroup()
	}

	// Rejections and in-review holds only record the decision. The
	// calendar gates apply to approvals only.
	if req.Status == models.RequestApproved {
		if !s.calendar.IsOpen(request.FacultyID, models.WindowAcademic, now) {
			return nil, s.denied(request, appErrors.ErrOutOfCalendar)
		}
		if !s.calendar.IsOpen(request.FacultyID, models.WindowSubmission, request.CreatedAt) {
			return nil, s.denied(request, appErrors.ErrDeadlineExpired)
		}
	}

	var target *models.Group
	if req.Status == models.RequestApproved && request.Kind != models.RequestCancellation {
		if request.TargetGroupID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "request has no target group")
		}
		target, err = s.groups.FindByID(ctx, *request.TargetGroupID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "target group not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target group")
		}
		if s.capacity.IsFull(target) {
			return nil, s.denied(request, appErrors.ErrGroupFull)
		}
		exclude := ""
		if request.SourceGroupID != nil {
			exclude = *request.SourceGroupID
		}
		conflicts, err := s.schedule.CheckGroup(ctx, request.StudentID, target, exclude)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, s.denied(request, appErrors.Clone(appErrors.ErrScheduleConflict,
				fmt.Sprintf("destination group collides with %d enrolled slot(s)", len(conflicts))))
		}
	}

	notes := optionalString(req.Notes)
	if err := s.repo.UpdateDecision(ctx, repository.UpdateDecisionParams{
		ID:         request.ID,
		Status:     req.Status,
		ReviewedBy: actor.UserID,
		ReviewedAt: now,
		Notes:      notes,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.denied(request, appErrors.ErrInvalidTransition)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist decision")
	}

	if req.Status == models.RequestApproved {
		if err := s.applyApproval(ctx, request); err != nil {
			// The stored status must never say APPROVED while the
			// roster was left untouched.
			if revertErr := s.repo.RevertDecision(ctx, request.ID, request.Status); revertErr != nil {
				s.logger.Error("failed to revert approval after roster error",
					zap.String("requestId", request.ID),
					zap.Error(revertErr))
			}
			return nil, err
		}
	}

	request.Status = req.Status
	request.ReviewedBy = &actor.UserID
	request.ReviewedAt = &now
	request.ReviewerNotes = notes

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionRequestDecision,
		Resource:   "change_request",
		ResourceID: &request.ID,
	})
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(request.Kind), string(req.Status))
	}
	if s.receipts != nil && req.Status.Terminal() {
		s.receipts.EnqueueReceipt(*request)
	}
	s.logger.Info("change request decided",
		zap.String("requestId", request.ID),
		zap.String("status", string(req.Status)),
		zap.String("reviewedBy", actor.UserID))
	return request, nil
}

// applyApproval mutates rosters and registrations for an approved
// request.
func (s *RequestService) applyApproval(ctx context.Context, request *models.ChangeRequest) error {
	regs, err := s.students.ActiveRegistrations(ctx, request.StudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	active := activeRegistrationFor(regs, request.SubjectCode)

	switch request.Kind {
	case models.RequestNewEnrollment:
		if err := s.groups.AddStudent(ctx, *request.TargetGroupID, request.StudentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return s.denied(request, appErrors.ErrGroupFull)
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
		}
		semesterID, err := s.students.CurrentSemesterID(ctx, request.StudentID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current semester")
		}
		now := time.Now().UTC()
		reg := &models.SubjectRegistration{
			ID:          uuid.NewString(),
			StudentID:   request.StudentID,
			SemesterID:  semesterID,
			SubjectCode: request.SubjectCode,
			GroupID:     request.TargetGroupID,
			Status:      models.RegistrationEnCurso,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.students.CreateRegistration(ctx, reg); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
		}
	case models.RequestGroupChange:
		if err := s.groups.TransferStudent(ctx, *request.SourceGroupID, *request.TargetGroupID, request.StudentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transfer student")
		}
		if active != nil {
			if err := s.students.UpdateRegistrationGroup(ctx, active.ID, *request.TargetGroupID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move registration")
			}
		}
	case models.RequestCancellation:
		if err := s.groups.RemoveStudent(ctx, *request.SourceGroupID, request.StudentID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw student")
		}
		if active != nil {
			if err := s.students.UpdateRegistrationStatus(ctx, active.ID, models.RegistrationCancelada); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel registration")
			}
		}
	}
	return nil
}

// denied records the denial cause before returning it.
func (s *RequestService) denied(request *models.ChangeRequest, err *appErrors.Error) error {
	if s.metrics != nil {
		s.metrics.ObserveDenial(err.Code)
	}
	s.logger.Info("change request decision denied",
		zap.String("requestId", request.ID),
		zap.String("cause", err.Code))
	return err
}

func (s *RequestService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "request-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func activeRegistrationFor(regs []models.SubjectRegistration, subjectCode string) *models.SubjectRegistration {
	for i := range regs {
		if regs[i].SubjectCode == subjectCode {
			return &regs[i]
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func receiptCode(now time.Time) string {
	return fmt.Sprintf("SOL-%d-%s", now.Year(), strings.ToUpper(uuid.NewString()[:8]))
}
