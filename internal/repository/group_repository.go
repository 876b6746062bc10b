package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/registro-academico-api/internal/models"
)

// GroupRepository handles persistence of subject groups, their weekly
// slots and their rosters.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group with its slots and roster loaded.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, code, subject_code, faculty_id, professor_id, capacity, created_at, updated_at
	FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	if err := r.loadSlots(ctx, &group); err != nil {
		return nil, err
	}
	if err := r.loadRoster(ctx, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByIDs returns the groups for the given ids with slots loaded.
// Rosters are not loaded; callers that need seat counts should use
// FindByID.
func (r *GroupRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, code, subject_code, faculty_id, professor_id, capacity, created_at, updated_at
	FROM groups WHERE id = ANY($1)`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list groups by ids: %w", err)
	}
	for i := range groups {
		if err := r.loadSlots(ctx, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// ListByFaculty returns groups for a faculty with rosters loaded,
// optionally filtered by subject.
func (r *GroupRepository) ListByFaculty(ctx context.Context, filter models.GroupFilter) ([]models.Group, error) {
	builder := strings.Builder{}
	args := []interface{}{filter.FacultyID}
	builder.WriteString(`SELECT id, code, subject_code, faculty_id, professor_id, capacity, created_at, updated_at
	FROM groups WHERE faculty_id = $1`)
	if filter.SubjectCode != "" {
		args = append(args, filter.SubjectCode)
		builder.WriteString(fmt.Sprintf(" AND subject_code = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY subject_code, code")

	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 100
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize))

	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list faculty groups: %w", err)
	}
	for i := range groups {
		if err := r.loadRoster(ctx, &groups[i]); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// AddStudent appends a student to the group roster. The capacity guard
// runs inside the INSERT so concurrent writers cannot oversell the last
// seat; a full group reports sql.ErrNoRows.
func (r *GroupRepository) AddStudent(ctx context.Context, groupID, studentID string) error {
	const query = `INSERT INTO group_students (group_id, student_id, joined_at)
	SELECT $1, $2, $3
	WHERE NOT EXISTS (SELECT 1 FROM group_students WHERE group_id = $1 AND student_id = $2)
	  AND (SELECT COUNT(*) FROM group_students WHERE group_id = $1) <
	      (SELECT capacity FROM groups WHERE id = $1)`
	result, err := r.db.ExecContext(ctx, query, groupID, studentID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add student to group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check roster insert rows: %w", err)
	}
	if rows == 0 {
		var member bool
		if err := r.db.GetContext(ctx, &member,
			`SELECT EXISTS (SELECT 1 FROM group_students WHERE group_id = $1 AND student_id = $2)`,
			groupID, studentID); err != nil {
			return fmt.Errorf("check roster membership: %w", err)
		}
		if !member {
			return sql.ErrNoRows
		}
	}
	return nil
}

// RemoveStudent drops a student from the group roster.
func (r *GroupRepository) RemoveStudent(ctx context.Context, groupID, studentID string) error {
	const query = `DELETE FROM group_students WHERE group_id = $1 AND student_id = $2`
	if _, err := r.db.ExecContext(ctx, query, groupID, studentID); err != nil {
		return fmt.Errorf("remove student from group: %w", err)
	}
	return nil
}

// TransferStudent moves a student between rosters in one transaction.
func (r *GroupRepository) TransferStudent(ctx context.Context, fromGroupID, toGroupID, studentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM group_students WHERE group_id = $1 AND student_id = $2`,
		fromGroupID, studentID); err != nil {
		return fmt.Errorf("leave source group: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_students (group_id, student_id, joined_at) VALUES ($1, $2, $3)
		 ON CONFLICT (group_id, student_id) DO NOTHING`,
		toGroupID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("join target group: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func (r *GroupRepository) loadSlots(ctx context.Context, group *models.Group) error {
	const query = `SELECT id, group_id, day_of_week, start_min, end_min
	FROM group_slots WHERE group_id = $1 ORDER BY day_of_week, start_min`
	if err := r.db.SelectContext(ctx, &group.Slots, query, group.ID); err != nil {
		return fmt.Errorf("load group slots: %w", err)
	}
	return nil
}

func (r *GroupRepository) loadRoster(ctx context.Context, group *models.Group) error {
	const query = `SELECT student_id FROM group_students WHERE group_id = $1 ORDER BY joined_at`
	if err := r.db.SelectContext(ctx, &group.StudentIDs, query, group.ID); err != nil {
		return fmt.Errorf("load group roster: %w", err)
	}
	return nil
}
