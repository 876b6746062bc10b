package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

// CalendarRepository persists per-faculty calendar windows.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListByFaculty returns every configured window for a faculty.
func (r *CalendarRepository) ListByFaculty(ctx context.Context, facultyID string) ([]models.CalendarWindow, error) {
	const query = `SELECT id, faculty_id, kind, start_date, end_date, updated_by, updated_at
	FROM calendar_windows WHERE faculty_id = $1 ORDER BY kind`
	var windows []models.CalendarWindow
	if err := r.db.SelectContext(ctx, &windows, query, facultyID); err != nil {
		return nil, fmt.Errorf("list calendar windows: %w", err)
	}
	return windows, nil
}

// Upsert stores a window, replacing any previous configuration of the
// same kind for the faculty.
func (r *CalendarRepository) Upsert(ctx context.Context, window *models.CalendarWindow) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	window.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO calendar_windows (id, faculty_id, kind, start_date, end_date, updated_by, updated_at)
	VALUES (:id, :faculty_id, :kind, :start_date, :end_date, :updated_by, :updated_at)
	ON CONFLICT (faculty_id, kind) DO UPDATE
	SET start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
	    updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("upsert calendar window: %w", err)
	}
	return nil
}
