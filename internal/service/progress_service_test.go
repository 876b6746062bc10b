package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

type studentHistoryStub struct {
	student *models.Student
}

func (s *studentHistoryStub) FindWithHistory(ctx context.Context, id string) (*models.Student, error) {
	if s.student == nil || s.student.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.student, nil
}

type subjectCatalogueStub struct {
	subjects map[string]*models.Subject
}

func (s *subjectCatalogueStub) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	if subject, ok := s.subjects[code]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

func weightedSubject(w1, w2, w3 float64) *models.Subject {
	return &models.Subject{Code: "MAT101", Name: "Calculo I", Weights: pq.Float64Array{w1, w2, w3}}
}

func TestComputeFinalWeightedAverage(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)

	final, err := svc.ComputeFinal(weightedSubject(0.3, 0.3, 0.4), []float64{4.0, 3.0, 5.0})
	require.NoError(t, err)
	require.InDelta(t, 4.1, final, 0.001)
	require.True(t, svc.Passed(final))

	final, err = svc.ComputeFinal(weightedSubject(0.3, 0.3, 0.4), []float64{2.0, 3.0, 3.0})
	require.NoError(t, err)
	require.InDelta(t, 2.7, final, 0.001)
	require.False(t, svc.Passed(final))
}

func TestComputeFinalPassBoundary(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	final, err := svc.ComputeFinal(weightedSubject(0.5, 0.3, 0.2), []float64{3.0, 3.0, 3.0})
	require.NoError(t, err)
	require.InDelta(t, 3.0, final, 0.001)
	require.True(t, svc.Passed(final))
}

func TestComputeFinalRejectsBadInputs(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)

	_, err := svc.ComputeFinal(weightedSubject(0.5, 0.5, 0.5), []float64{3, 3, 3})
	require.Error(t, err, "weights not summing to one")

	_, err = svc.ComputeFinal(weightedSubject(0.3, 0.3, 0.4), []float64{3, 3, 5.5})
	require.Error(t, err, "grade above scale")

	_, err = svc.ComputeFinal(weightedSubject(0.3, 0.3, 0.4), []float64{-1, 3, 3})
	require.Error(t, err, "negative grade")

	_, err = svc.ComputeFinal(weightedSubject(0.3, 0.3, 0.4), []float64{3, 3})
	require.Error(t, err, "missing partial grade")
}

func registrationsWith(approved, failed, cancelled, inProgress int) []models.SubjectRegistration {
	var regs []models.SubjectRegistration
	add := func(n int, status models.RegistrationStatus) {
		for i := 0; i < n; i++ {
			regs = append(regs, models.SubjectRegistration{Status: status})
		}
	}
	add(approved, models.RegistrationAprobada)
	add(failed, models.RegistrationReprobada)
	add(cancelled, models.RegistrationCancelada)
	add(inProgress, models.RegistrationEnCurso)
	return regs
}

func TestIndicatorsMostlyApprovedIsGreen(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	ind := svc.Indicators(registrationsWith(9, 1, 0, 0))
	require.InDelta(t, 90.0, ind.ApprovedPercent, 0.001)
	require.Equal(t, models.LightVerde, ind.GlobalStatus)
	require.False(t, ind.Critical)
}

func TestIndicatorsHighFailureIsCritical(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	ind := svc.Indicators(registrationsWith(6, 4, 0, 0))
	require.InDelta(t, 40.0, ind.FailedPercent, 0.001)
	require.Equal(t, models.LightRojo, ind.GlobalStatus)
	require.True(t, ind.Critical)
}

func TestIndicatorsCancellationsTriggerCritical(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	ind := svc.Indicators(registrationsWith(8, 0, 2, 0))
	require.InDelta(t, 20.0, ind.CancelledPercent, 0.001)
	require.True(t, ind.Critical)
}

func TestIndicatorsMiddleBandIsBlue(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	ind := svc.Indicators(registrationsWith(7, 1, 0, 2))
	require.InDelta(t, 70.0, ind.ApprovedPercent, 0.001)
	require.Equal(t, models.LightAzul, ind.GlobalStatus)
	require.Equal(t, 2, ind.InProgressCount)
}

func TestIndicatorsEmptyHistory(t *testing.T) {
	svc := NewProgressService(nil, nil, nil)
	ind := svc.Indicators(nil)
	require.Equal(t, 0, ind.TotalSubjects)
	require.Zero(t, ind.ApprovedPercent)
	require.Zero(t, ind.FailedPercent)
	require.Zero(t, ind.CancelledPercent)
	require.Equal(t, models.LightBlanco, ind.GlobalStatus)
}

func TestSemaforoAssemblesBoard(t *testing.T) {
	grade := 4.2
	students := &studentHistoryStub{student: &models.Student{
		ID:       "student-1",
		Code:     "20201234",
		FullName: "Ana Rojas",
		Program:  "Ingenieria de Sistemas",
		Semesters: []models.Semester{{
			ID: "sem-1",
			Registrations: []models.SubjectRegistration{
				{SubjectCode: "MAT101", Status: models.RegistrationAprobada, FinalGrade: &grade},
				{SubjectCode: "FIS201", Status: models.RegistrationEnCurso},
			},
		}},
	}}
	subjects := &subjectCatalogueStub{subjects: map[string]*models.Subject{
		"MAT101": {Code: "MAT101", Name: "Calculo I"},
	}}
	svc := NewProgressService(students, subjects, nil)

	board, err := svc.Semaforo(context.Background(), "student-1")
	require.NoError(t, err)
	require.Equal(t, "Ana Rojas", board.FullName)
	require.Len(t, board.Subjects, 2)
	require.Equal(t, models.LightVerde, board.Subjects[0].Light)
	require.Equal(t, "Calculo I", board.Subjects[0].SubjectName)
	require.Equal(t, models.LightAzul, board.Subjects[1].Light)
	require.Equal(t, 2, board.Indicators.TotalSubjects)
}

func TestSemaforoUnknownStudent(t *testing.T) {
	svc := NewProgressService(&studentHistoryStub{}, &subjectCatalogueStub{}, nil)
	_, err := svc.Semaforo(context.Background(), "missing")
	require.Error(t, err)
}
