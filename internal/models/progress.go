package models

// SubjectLight is the color assigned to one subject in the student
// progress board.
type SubjectLight string

const (
	LightVerde  SubjectLight = "VERDE"
	LightAzul   SubjectLight = "AZUL"
	LightRojo   SubjectLight = "ROJO"
	LightBlanco SubjectLight = "BLANCO"
)

// SubjectProgress is one subject's entry in the semaforo.
type SubjectProgress struct {
	SubjectCode string             `json:"subject_code"`
	SubjectName string             `json:"subject_name"`
	Status      RegistrationStatus `json:"status"`
	FinalGrade  *float64           `json:"final_grade,omitempty"`
	Light       SubjectLight       `json:"light"`
}

// ProgressIndicators are the aggregate percentages over a student's
// academic history.
type ProgressIndicators struct {
	TotalSubjects    int          `json:"total_subjects"`
	ApprovedPercent  float64      `json:"approved_percent"`
	FailedPercent    float64      `json:"failed_percent"`
	CancelledPercent float64      `json:"cancelled_percent"`
	InProgressCount  int          `json:"in_progress_count"`
	GlobalStatus     SubjectLight `json:"global_status"`
	Critical         bool         `json:"critical"`
}

// StudentSemaforo is the full progress board for one student.
type StudentSemaforo struct {
	StudentID   string             `json:"student_id"`
	StudentCode string             `json:"student_code"`
	FullName    string             `json:"full_name"`
	Program     string             `json:"program"`
	Subjects    []SubjectProgress  `json:"subjects"`
	Indicators  ProgressIndicators `json:"indicators"`
}
