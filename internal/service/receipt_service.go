package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
	"github.com/noah-isme/registro-academico-api/pkg/export"
	"github.com/noah-isme/registro-academico-api/pkg/jobs"
)

type receiptStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type receiptGroupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type receiptStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type urlSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

// ReceiptServiceConfig tunes the background queue.
type ReceiptServiceConfig struct {
	Workers    int
	MaxRetries int
}

// ReceiptService renders constancia PDFs for submitted and decided
// requests. Rendering runs on a background queue so the API response
// never waits on PDF generation.
type ReceiptService struct {
	students receiptStudentReader
	groups   receiptGroupReader
	renderer *export.ReceiptRenderer
	storage  receiptStorage
	signer   urlSigner
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewReceiptService constructs the service and its queue.
func NewReceiptService(
	students receiptStudentReader,
	groups receiptGroupReader,
	storage receiptStorage,
	signer urlSigner,
	cfg ReceiptServiceConfig,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReceiptService{
		students: students,
		groups:   groups,
		renderer: export.NewReceiptRenderer(),
		storage:  storage,
		signer:   signer,
		logger:   logger,
	}
	svc.queue = jobs.NewQueue("receipts", svc.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return svc
}

// Start launches the rendering workers.
func (s *ReceiptService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the rendering workers.
func (s *ReceiptService) Stop() {
	s.queue.Stop()
}

// EnqueueReceipt schedules PDF generation for a request snapshot.
func (s *ReceiptService) EnqueueReceipt(request models.ChangeRequest) {
	job := jobs.Job{
		ID:      request.ID,
		Type:    "receipt",
		Payload: request,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue receipt job",
			zap.String("requestId", request.ID), zap.Error(err))
	}
}

func receiptPath(receiptCode string) string {
	return fmt.Sprintf("%s.pdf", receiptCode)
}

func (s *ReceiptService) process(ctx context.Context, job jobs.Job) error {
	request, ok := job.Payload.(models.ChangeRequest)
	if !ok {
		return fmt.Errorf("unexpected receipt payload type %T", job.Payload)
	}

	receipt := export.Receipt{
		ReceiptCode: request.ReceiptCode,
		Kind:        string(request.Kind),
		Status:      string(request.Status),
		SubmittedAt: request.CreatedAt,
	}
	if request.ReviewerNotes != nil {
		receipt.ReviewerNotes = *request.ReviewerNotes
	}
	if request.ReviewedAt != nil {
		receipt.DecidedAt = *request.ReviewedAt
	}

	student, err := s.students.FindByID(ctx, request.StudentID)
	if err != nil {
		return fmt.Errorf("load student for receipt: %w", err)
	}
	receipt.StudentName = student.FullName
	receipt.StudentCode = student.Code
	receipt.Faculty = student.FacultyID

	if request.SourceGroupID != nil {
		if group, err := s.groups.FindByID(ctx, *request.SourceGroupID); err == nil {
			receipt.SourceGroup = fmt.Sprintf("%s / %s", group.SubjectCode, group.Code)
		}
	}
	if request.TargetGroupID != nil {
		if group, err := s.groups.FindByID(ctx, *request.TargetGroupID); err == nil {
			receipt.TargetGroup = fmt.Sprintf("%s / %s", group.SubjectCode, group.Code)
		}
	}

	data, err := s.renderer.Render(receipt)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	if _, err := s.storage.Save(receiptPath(request.ReceiptCode), data); err != nil {
		return fmt.Errorf("store receipt: %w", err)
	}
	s.logger.Info("receipt rendered",
		zap.String("requestId", request.ID),
		zap.String("receiptCode", request.ReceiptCode))
	return nil
}

// SignedURL returns a download token for a rendered receipt.
func (s *ReceiptService) SignedURL(request *models.ChangeRequest) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate(request.ID, receiptPath(request.ReceiptCode))
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign receipt url")
	}
	return token, expiresAt, nil
}

// OpenByToken validates a download token and opens the stored PDF.
func (s *ReceiptService) OpenByToken(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not generated yet")
	}
	return file, nil
}
