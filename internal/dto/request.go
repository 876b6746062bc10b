package dto

import "github.com/noah-isme/registro-academico-api/internal/models"

// CreateRequestRequest payload for submitting a change request.
type CreateRequestRequest struct {
	Kind          models.RequestKind `json:"kind" validate:"required,oneof=NEW_ENROLLMENT GROUP_CHANGE CANCELLATION"`
	SubjectCode   string             `json:"subjectCode" validate:"required"`
	SourceGroupID string             `json:"sourceGroupId"`
	TargetGroupID string             `json:"targetGroupId"`
	Reason        string             `json:"reason" validate:"required,min=10"`
	Priority      int                `json:"priority" validate:"gte=0,lte=5"`
}

// DecideRequest captures the dean decision and optional notes.
type DecideRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=IN_REVIEW APPROVED REJECTED"`
	Notes  string               `json:"notes"`
}

// RequestQuery mirrors supported listing filters.
type RequestQuery struct {
	Status    models.RequestStatus
	Kind      models.RequestKind
	StudentID string
	Page      int
	PageSize  int
}
