package users

import (
	"slices"
	"time"
)

// Role is the user's role in the tour-operations business. The set is closed.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleTourGuide    Role = "tour_guide"
	RoleTourOperator Role = "tour_operator"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTourGuide, RoleTourOperator, RoleAdmin:
		return true
	}
	return false
}

// Permission is an opaque permission string granted by the server (e.g. "tours:write").
type Permission string

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

type User struct {
	ID        string `json:"id"`                  // Unique identifier for the user
	Email     string `json:"email"`               // User's email address
	FullName  string `json:"fullName,omitempty"`  // Display name
	Role      Role   `json:"role"`                // One of the closed role set
	Phone     string `json:"phone,omitempty"`     // Optional profile field
	AvatarURL string `json:"avatarUrl,omitempty"` // Optional profile field
	Status    Status `json:"status,omitempty"`

	// Permissions is nil when the server assigned no permission list at all.
	// An empty, non-nil slice means the list was assigned and is empty.
	Permissions *[]Permission `json:"permissions,omitempty"`

	EmailVerified bool       `json:"emailVerified,omitempty"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	Language      string     `json:"language,omitempty"`
	Timezone      string     `json:"timezone,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// PermissionsAssigned reports whether the server sent a permission list for this user.
func (u *User) PermissionsAssigned() bool {
	return u != nil && u.Permissions != nil
}

// HasPermission is true iff the user has an assigned permission list containing p.
func (u *User) HasPermission(p Permission) bool {
	if !u.PermissionsAssigned() {
		return false
	}
	return slices.Contains(*u.Permissions, p)
}

// HasRole is a strict equality check. A nil user has no role.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}

// Clone returns a deep copy so callers cannot mutate shared session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Permissions != nil {
		perms := slices.Clone(*u.Permissions)
		c.Permissions = &perms
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		c.CreatedAt = &t
	}
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// WithPermissions is a convenience for building users with an assigned permission list.
func WithPermissions(perms ...Permission) *[]Permission {
	p := append([]Permission{}, perms...)
	return &p
}
