package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

// StudentRepository handles persistence of students and their academic
// history.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns a student without history loaded.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, user_id, code, full_name, faculty_id, program, created_at, updated_at
	FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID returns the student profile linked to a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, code, full_name, faculty_id, program, created_at, updated_at
	FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindWithHistory returns a student with all semesters and
// registrations loaded.
func (r *StudentRepository) FindWithHistory(ctx context.Context, id string) (*models.Student, error) {
	student, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const semesterQuery = `SELECT id, student_id, period FROM semesters WHERE student_id = $1 ORDER BY period`
	if err := r.db.SelectContext(ctx, &student.Semesters, semesterQuery, id); err != nil {
		return nil, fmt.Errorf("load student semesters: %w", err)
	}
	const regQuery = `SELECT id, student_id, semester_id, subject_code, group_id, status, grades, final_grade, created_at, updated_at
	FROM subject_registrations WHERE semester_id = $1 ORDER BY subject_code`
	for i := range student.Semesters {
		sem := &student.Semesters[i]
		if err := r.db.SelectContext(ctx, &sem.Registrations, regQuery, sem.ID); err != nil {
			return nil, fmt.Errorf("load semester registrations: %w", err)
		}
	}
	return student, nil
}

// ActiveRegistrations returns the in-progress registrations for a
// student, used to assemble the current weekly schedule.
func (r *StudentRepository) ActiveRegistrations(ctx context.Context, studentID string) ([]models.SubjectRegistration, error) {
	const query = `SELECT id, student_id, semester_id, subject_code, group_id, status, grades, final_grade, created_at, updated_at
	FROM subject_registrations WHERE student_id = $1 AND status = $2`
	var regs []models.SubjectRegistration
	if err := r.db.SelectContext(ctx, &regs, query, studentID, models.RegistrationEnCurso); err != nil {
		return nil, fmt.Errorf("list active registrations: %w", err)
	}
	return regs, nil
}

// CreateRegistration inserts a new subject registration.
func (r *StudentRepository) CreateRegistration(ctx context.Context, reg *models.SubjectRegistration) error {
	const query = `INSERT INTO subject_registrations
	(id, student_id, semester_id, subject_code, group_id, status, grades, final_grade, created_at, updated_at)
	VALUES (:id, :student_id, :semester_id, :subject_code, :group_id, :status, :grades, :final_grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// UpdateRegistrationGroup moves an in-progress registration to another
// group.
func (r *StudentRepository) UpdateRegistrationGroup(ctx context.Context, registrationID, groupID string) error {
	const query = `UPDATE subject_registrations SET group_id = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, registrationID, groupID); err != nil {
		return fmt.Errorf("update registration group: %w", err)
	}
	return nil
}

// UpdateRegistrationStatus changes a registration status.
func (r *StudentRepository) UpdateRegistrationStatus(ctx context.Context, registrationID string, status models.RegistrationStatus) error {
	const query = `UPDATE subject_registrations SET status = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, registrationID, status); err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	return nil
}

// CurrentSemesterID returns the latest semester id for a student.
func (r *StudentRepository) CurrentSemesterID(ctx context.Context, studentID string) (string, error) {
	const query = `SELECT id FROM semesters WHERE student_id = $1 ORDER BY period DESC LIMIT 1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, studentID); err != nil {
		return "", err
	}
	return id, nil
}
