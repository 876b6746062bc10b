package dto

import "github.com/noah-isme/registro-academico-api/internal/models"

// ConfigureWindowRequest describes payload for configuring one calendar window.
type ConfigureWindowRequest struct {
	Kind      models.WindowKind `json:"kind" validate:"required,oneof=ACADEMIC SUBMISSION"`
	StartDate string            `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string            `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// WindowItem represents a configured window exposed via API.
type WindowItem struct {
	Kind      models.WindowKind `json:"kind"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
	Open      bool              `json:"open"`
}
