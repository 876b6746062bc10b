package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/registro-academico-api/internal/models"
	appErrors "github.com/noah-isme/registro-academico-api/pkg/errors"
)

const passingGrade = 3.0

type studentHistoryReader interface {
	FindWithHistory(ctx context.Context, id string) (*models.Student, error)
}

type subjectCatalogue interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
}

// ProgressService computes final grades and the per-student progress
// board (semaforo).
type ProgressService struct {
	students studentHistoryReader
	subjects subjectCatalogue
	logger   *zap.Logger
}

// NewProgressService constructs the service.
func NewProgressService(students studentHistoryReader, subjects subjectCatalogue, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{students: students, subjects: subjects, logger: logger}
}

// ComputeFinal combines three partial grades with the subject weights.
// Weights must sum to one and every grade must sit in [0, 5].
func (s *ProgressService) ComputeFinal(subject *models.Subject, grades []float64) (float64, error) {
	if len(subject.Weights) != 3 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "subject must define exactly three grade weights")
	}
	var sum float64
	for _, w := range subject.Weights {
		if w < 0 {
			return 0, appErrors.Clone(appErrors.ErrValidation, "grade weights must not be negative")
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "grade weights must sum to 1.0")
	}
	if len(grades) != 3 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "exactly three partial grades are required")
	}
	var final float64
	for i, g := range grades {
		if g < 0 || g > 5 {
			return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade %d must be between 0.0 and 5.0", i+1))
		}
		final += g * subject.Weights[i]
	}
	return final, nil
}

// Passed reports whether a final grade meets the passing threshold.
func (s *ProgressService) Passed(finalGrade float64) bool {
	return finalGrade >= passingGrade
}

// light maps a registration status to its board color.
func light(status models.RegistrationStatus) models.SubjectLight {
	switch status {
	case models.RegistrationAprobada:
		return models.LightVerde
	case models.RegistrationReprobada:
		return models.LightRojo
	case models.RegistrationEnCurso:
		return models.LightAzul
	default:
		return models.LightBlanco
	}
}

// Indicators aggregates registration outcomes into the global board
// status. A history with at least 30% failed or 20% cancelled subjects
// is flagged critical.
func (s *ProgressService) Indicators(registrations []models.SubjectRegistration) models.ProgressIndicators {
	ind := models.ProgressIndicators{TotalSubjects: len(registrations)}
	if ind.TotalSubjects == 0 {
		ind.GlobalStatus = models.LightBlanco
		return ind
	}
	var approved, failed, cancelled int
	for _, reg := range registrations {
		switch reg.Status {
		case models.RegistrationAprobada:
			approved++
		case models.RegistrationReprobada:
			failed++
		case models.RegistrationCancelada:
			cancelled++
		case models.RegistrationEnCurso:
			ind.InProgressCount++
		}
	}
	total := float64(ind.TotalSubjects)
	ind.ApprovedPercent = float64(approved) / total * 100
	ind.FailedPercent = float64(failed) / total * 100
	ind.CancelledPercent = float64(cancelled) / total * 100

	switch {
	case ind.FailedPercent >= 30 || ind.CancelledPercent >= 20:
		ind.GlobalStatus = models.LightRojo
		ind.Critical = true
	case ind.ApprovedPercent >= 80:
		ind.GlobalStatus = models.LightVerde
	case ind.ApprovedPercent >= 60:
		ind.GlobalStatus = models.LightAzul
	default:
		ind.GlobalStatus = models.LightRojo
	}
	return ind
}

// Semaforo assembles the full progress board for a student.
func (s *ProgressService) Semaforo(ctx context.Context, studentID string) (*models.StudentSemaforo, error) {
	student, err := s.students.FindWithHistory(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student history")
	}

	var registrations []models.SubjectRegistration
	for _, sem := range student.Semesters {
		registrations = append(registrations, sem.Registrations...)
	}

	board := &models.StudentSemaforo{
		StudentID:   student.ID,
		StudentCode: student.Code,
		FullName:    student.FullName,
		Program:     student.Program,
		Subjects:    make([]models.SubjectProgress, 0, len(registrations)),
		Indicators:  s.Indicators(registrations),
	}
	for _, reg := range registrations {
		entry := models.SubjectProgress{
			SubjectCode: reg.SubjectCode,
			Status:      reg.Status,
			FinalGrade:  reg.FinalGrade,
			Light:       light(reg.Status),
		}
		if subject, err := s.subjects.FindByCode(ctx, reg.SubjectCode); err == nil {
			entry.SubjectName = subject.Name
		} else if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to resolve subject name",
				zap.String("subjectCode", reg.SubjectCode), zap.Error(err))
		}
		board.Subjects = append(board.Subjects, entry)
	}
	return board, nil
}
