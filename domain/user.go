package domain

import "strings"

// User represents a chat identity known to the tracker. Users are created on
// first contact; the role is fixed at creation and never changed by the core.
type User struct {
	ID       int64  `json:"id"`
	Handle   string `json:"handle"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// IsCoordinator reports whether the user holds task-issuing authority.
func (u *User) IsCoordinator() bool {
	return u != nil && u.Role == RoleCoordinator
}

// NormalizeHandle strips the optional leading @ from a display handle.
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// Actor identifies who performed a mutation for history attribution.
type Actor struct {
	ID     int64
	Handle string
	System bool
}

// SystemActor attributes automatic transitions to the tracker itself.
var SystemActor = Actor{ID: 0, Handle: "system", System: true}
