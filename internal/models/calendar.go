package models

import "time"

// WindowKind distinguishes the calendar windows a faculty configures.
type WindowKind string

const (
	// WindowAcademic bounds the academic period in which decisions
	// may be taken at all.
	WindowAcademic WindowKind = "ACADEMIC"
	// WindowSubmission bounds when change requests may be submitted.
	WindowSubmission WindowKind = "SUBMISSION"
)

// CalendarWindow is a dated window configured per faculty.
type CalendarWindow struct {
	ID        string     `db:"id" json:"id"`
	FacultyID string     `db:"faculty_id" json:"faculty_id"`
	Kind      WindowKind `db:"kind" json:"kind"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   time.Time  `db:"end_date" json:"end_date"`
	UpdatedBy *string    `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Contains reports whether t falls inside the window, both ends
// inclusive.
func (w CalendarWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartDate) && !t.After(w.EndDate)
}
