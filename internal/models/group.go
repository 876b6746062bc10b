package models

import (
	"fmt"
	"time"
)

// Weekday values stored for group time slots.
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
)

// TimeSlot is a weekly class block. Start and End are minutes since
// midnight so interval comparisons stay integer arithmetic.
type TimeSlot struct {
	ID       string `db:"id" json:"-"`
	GroupID  string `db:"group_id" json:"-"`
	Day      string `db:"day_of_week" json:"day_of_week"`
	StartMin int    `db:"start_min" json:"start_min"`
	EndMin   int    `db:"end_min" json:"end_min"`
}

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Group is one offered section of a subject with its own schedule,
// capacity and roster.
type Group struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	FacultyID   string    `db:"faculty_id" json:"faculty_id"`
	ProfessorID *string   `db:"professor_id" json:"professor_id,omitempty"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Slots      []TimeSlot `json:"slots,omitempty"`
	StudentIDs []string   `json:"student_ids,omitempty"`
}

// Enrolled returns the current roster size.
func (g *Group) Enrolled() int {
	return len(g.StudentIDs)
}

// HasStudent reports whether the student is on the roster.
func (g *Group) HasStudent(studentID string) bool {
	for _, id := range g.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// AlertLevel classifies a group occupancy percentage.
type AlertLevel string

const (
	AlertNormal      AlertLevel = "NORMAL"
	AlertAdvertencia AlertLevel = "ADVERTENCIA"
	AlertCritico     AlertLevel = "CRITICO"
)

// GroupOccupancy is a monitoring row for a single group.
type GroupOccupancy struct {
	GroupID        string     `json:"group_id"`
	GroupCode      string     `json:"group_code"`
	SubjectCode    string     `json:"subject_code"`
	Capacity       int        `json:"capacity"`
	Enrolled       int        `json:"enrolled"`
	AvailableSeats int        `json:"available_seats"`
	Occupancy      float64    `json:"occupancy"`
	Alert          AlertLevel `json:"alert"`
}

// GroupFilter describes query params for listing groups.
type GroupFilter struct {
	FacultyID   string
	SubjectCode string
	Page        int
	PageSize    int
}
