package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject describes a course in the faculty catalogue. Partial grades are
// combined with a three-weight linear scheme.
type Subject struct {
	Code          string          `db:"code" json:"code"`
	Acronym       string          `db:"acronym" json:"acronym"`
	Name          string          `db:"name" json:"name"`
	Credits       int             `db:"credits" json:"credits"`
	Weights       pq.Float64Array `db:"weights" json:"weights"`
	Prerequisites pq.StringArray  `db:"prerequisites" json:"prerequisites,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
