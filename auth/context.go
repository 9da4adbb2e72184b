package auth

import "github.com/hermione06/cafeteria-management-system/models"

// Context identifies the caller of a service operation. It is built at the
// transport edge (from verified JWT claims) and threaded explicitly through
// every catalog and order mutation so authorization never depends on
// ambient request state.
type Context struct {
	UserID uint
	Role   models.UserRole
}

// IsAdmin reports whether the caller holds the admin role.
func (c Context) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// IsStaffOrAdmin reports whether the caller holds a privileged role.
func (c Context) IsStaffOrAdmin() bool {
	return c.Role == models.RoleStaff || c.Role == models.RoleAdmin
}

// Owns reports whether the caller is the given user.
func (c Context) Owns(userID uint) bool {
	return c.UserID == userID
}
