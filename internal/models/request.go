package models

import "time"

// RequestKind is the type of change a student is asking for.
type RequestKind string

const (
	RequestNewEnrollment RequestKind = "NEW_ENROLLMENT"
	RequestGroupChange   RequestKind = "GROUP_CHANGE"
	RequestCancellation  RequestKind = "CANCELLATION"
)

// RequestStatus is the lifecycle state of a change request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestInReview RequestStatus = "IN_REVIEW"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ChangeRequest is a student petition to alter their enrollment,
// reviewed and decided by the dean's office.
type ChangeRequest struct {
	ID            string        `db:"id" json:"id"`
	ReceiptCode   string        `db:"receipt_code" json:"receipt_code"`
	StudentID     string        `db:"student_id" json:"student_id"`
	FacultyID     string        `db:"faculty_id" json:"faculty_id"`
	Kind          RequestKind   `db:"kind" json:"kind"`
	SubjectCode   string        `db:"subject_code" json:"subject_code"`
	SourceGroupID *string       `db:"source_group_id" json:"source_group_id,omitempty"`
	TargetGroupID *string       `db:"target_group_id" json:"target_group_id,omitempty"`
	Status        RequestStatus `db:"status" json:"status"`
	Priority      int           `db:"priority" json:"priority"`
	Reason        string        `db:"reason" json:"reason"`
	ReviewerNotes *string       `db:"reviewer_notes" json:"reviewer_notes,omitempty"`
	ReviewedBy    *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// RequestFilter describes query params for listing change requests.
type RequestFilter struct {
	FacultyID string
	StudentID string
	Status    RequestStatus
	Kind      RequestKind
	Page      int
	PageSize  int
}
