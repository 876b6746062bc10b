package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleDecano     UserRole = "DECANO"
	RoleProfesor   UserRole = "PROFESOR"
	RoleEstudiante UserRole = "ESTUDIANTE"
)

// Capability names a role-specific behaviour instead of encoding it in an
// inheritance chain. Roles are plain enum values plus a capability set.
type Capability string

const (
	CapSubmitRequests Capability = "SUBMIT_REQUESTS"
	CapReviewRequests Capability = "REVIEW_REQUESTS"
	CapTeachGroups    Capability = "TEACH_GROUPS"
	CapConfigure      Capability = "CONFIGURE"
)

// Capabilities returns the capability set granted to a role.
func Capabilities(role UserRole) []Capability {
	switch role {
	case RoleAdmin:
		return []Capability{CapSubmitRequests, CapReviewRequests, CapConfigure}
	case RoleDecano:
		return []Capability{CapReviewRequests, CapConfigure}
	case RoleProfesor:
		return []Capability{CapTeachGroups}
	case RoleEstudiante:
		return []Capability{CapSubmitRequests}
	default:
		return nil
	}
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role UserRole, cap Capability) bool {
	for _, c := range Capabilities(role) {
		if c == cap {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	FacultyID    string     `db:"faculty_id" json:"faculty_id"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
