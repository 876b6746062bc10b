package models

import (
	"time"

	"github.com/lib/pq"
)

// RegistrationStatus is the lifecycle state of a subject registration.
type RegistrationStatus string

const (
	RegistrationEnCurso   RegistrationStatus = "EN_CURSO"
	RegistrationAprobada  RegistrationStatus = "APROBADA"
	RegistrationReprobada RegistrationStatus = "REPROBADA"
	RegistrationCancelada RegistrationStatus = "CANCELADA"
)

// SubjectRegistration is one student's enrollment in a subject for a
// semester, with up to three partial grades.
type SubjectRegistration struct {
	ID          string             `db:"id" json:"id"`
	StudentID   string             `db:"student_id" json:"student_id"`
	SemesterID  string             `db:"semester_id" json:"semester_id"`
	SubjectCode string             `db:"subject_code" json:"subject_code"`
	GroupID     *string            `db:"group_id" json:"group_id,omitempty"`
	Status      RegistrationStatus `db:"status" json:"status"`
	Grades      pq.Float64Array    `db:"grades" json:"grades"`
	FinalGrade  *float64           `db:"final_grade" json:"final_grade,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// Semester groups the registrations of one academic period.
type Semester struct {
	ID            string                `db:"id" json:"id"`
	StudentID     string                `db:"student_id" json:"student_id"`
	Period        string                `db:"period" json:"period"`
	Registrations []SubjectRegistration `json:"registrations,omitempty"`
}

// Student is an enrolled student with their academic history.
type Student struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Code      string    `db:"code" json:"code"`
	FullName  string    `db:"full_name" json:"full_name"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	Program   string    `db:"program" json:"program"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Semesters []Semester `json:"semesters,omitempty"`
}

// CurrentRegistrations returns the registrations still in progress
// across all semesters.
func (s *Student) CurrentRegistrations() []SubjectRegistration {
	var out []SubjectRegistration
	for _, sem := range s.Semesters {
		for _, reg := range sem.Registrations {
			if reg.Status == RegistrationEnCurso {
				out = append(out, reg)
			}
		}
	}
	return out
}
