package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

const requestColumns = `id, receipt_code, student_id, faculty_id, kind, subject_code,
       source_group_id, target_group_id, status, priority, reason,
       reviewer_notes, reviewed_by, reviewed_at, created_at, updated_at`

// RequestRepository persists change request workflow data.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new change request row.
func (r *RequestRepository) Create(ctx context.Context, request *models.ChangeRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.RequestPending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO change_requests
	(id, receipt_code, student_id, faculty_id, kind, subject_code, source_group_id, target_group_id, status, priority, reason, reviewer_notes, reviewed_by, reviewed_at, created_at, updated_at)
	VALUES (:id, :receipt_code, :student_id, :faculty_id, :kind, :subject_code, :source_group_id, :target_group_id, :status, :priority, :reason, :reviewer_notes, :reviewed_by, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create change request: %w", err)
	}
	return nil
}

// GetByID fetches a change request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM change_requests WHERE id = $1`
	var request models.ChangeRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns change requests matching the filter (newest first).
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.ChangeRequest, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 4)
	builder.WriteString(`SELECT ` + requestColumns + ` FROM change_requests`)

	conditions := make([]string, 0, 4)
	if filter.FacultyID != "" {
		args = append(args, filter.FacultyID)
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY priority DESC, created_at DESC")

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize))

	var requests []models.ChangeRequest
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

// CountPendingForStudent returns how many non-terminal requests the
// student already has for the subject.
func (r *RequestRepository) CountPendingForStudent(ctx context.Context, studentID, subjectCode string) (int, error) {
	const query = `SELECT COUNT(*) FROM change_requests
	WHERE student_id = $1 AND subject_code = $2 AND status IN ('PENDING', 'IN_REVIEW')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, subjectCode); err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	return count, nil
}

// UpdateDecisionParams groups mutable columns for review operations.
type UpdateDecisionParams struct {
	ID         string
	Status     models.RequestStatus
	ReviewedBy string
	ReviewedAt time.Time
	Notes      *string
}

// UpdateDecision persists a dean decision. The guard on the current
// status makes a decision over an already decided request report
// sql.ErrNoRows instead of silently overwriting it.
func (r *RequestRepository) UpdateDecision(ctx context.Context, params UpdateDecisionParams) error {
	const query = `UPDATE change_requests
	SET status = :status, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at,
	    reviewer_notes = :reviewer_notes, updated_at = :reviewed_at
	WHERE id = :id AND status IN ('PENDING', 'IN_REVIEW')`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":             params.ID,
		"status":         params.Status,
		"reviewed_by":    params.ReviewedBy,
		"reviewed_at":    params.ReviewedAt,
		"reviewer_notes": params.Notes,
	})
	if err != nil {
		return fmt.Errorf("update request decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check request update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RevertDecision rolls an approved request back to its previous status
// when the roster mutation could not be applied.
func (r *RequestRepository) RevertDecision(ctx context.Context, id string, status models.RequestStatus) error {
	const query = `UPDATE change_requests
	SET status = $2, reviewed_by = NULL, reviewed_at = NULL, reviewer_notes = NULL, updated_at = NOW()
	WHERE id = $1 AND status = 'APPROVED'`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("revert request decision: %w", err)
	}
	return nil
}
