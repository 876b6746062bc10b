package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

// SubjectRepository handles persistence of the subject catalogue.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByCode returns a subject by its catalogue code.
func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	const query = `SELECT code, acronym, name, credits, weights, prerequisites, created_at, updated_at
	FROM subjects WHERE code = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, code); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByAcronym returns a subject by its short acronym.
func (r *SubjectRepository) FindByAcronym(ctx context.Context, acronym string) (*models.Subject, error) {
	const query = `SELECT code, acronym, name, credits, weights, prerequisites, created_at, updated_at
	FROM subjects WHERE acronym = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, acronym); err != nil {
		return nil, err
	}
	return &subject, nil
}

// List returns the full catalogue ordered by code.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	const query = `SELECT code, acronym, name, credits, weights, prerequisites, created_at, updated_at
	FROM subjects ORDER BY code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
