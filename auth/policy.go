package auth

import "github.com/hermione06/cafeteria-management-system/models"

// Policy functions map a caller Context to an allow/deny decision per
// operation. Services consult these and translate a deny into a Forbidden
// error; role-gating middleware at the HTTP edge is a convenience on top,
// not the enforcement point.

// CanCreateMenuItem allows catalog creation for admins only.
func CanCreateMenuItem(c Context) bool {
	return c.IsAdmin()
}

// CanDeleteMenuItem allows catalog deletion for admins only.
func CanDeleteMenuItem(c Context) bool {
	return c.IsAdmin()
}

// CanUpdateMenuItem allows catalog edits for staff and admins.
func CanUpdateMenuItem(c Context) bool {
	return c.IsStaffOrAdmin()
}

// CanToggleAvailability allows availability flips for staff and admins.
func CanToggleAvailability(c Context) bool {
	return c.IsStaffOrAdmin()
}

// CanUpdateOrderStatus allows lifecycle transitions for staff and admins.
func CanUpdateOrderStatus(c Context) bool {
	return c.IsStaffOrAdmin()
}

// CanUpdateOrderPayment allows payment updates for staff and admins.
func CanUpdateOrderPayment(c Context) bool {
	return c.IsStaffOrAdmin()
}

// CanReadOrder allows the owner plus staff and admins.
func CanReadOrder(c Context, order *models.Order) bool {
	return c.Owns(order.UserID) || c.IsStaffOrAdmin()
}

// CanMutateOrderItems restricts line addition/removal to the owning user.
// Staff and admins manage lifecycle and payment, not the order's contents.
func CanMutateOrderItems(c Context, order *models.Order) bool {
	return c.Owns(order.UserID)
}

// CanDeleteOrder allows admins for any order and owners for their own.
// Whether a pending-only restriction applies to owners is a business rule
// the order service enforces separately (it is a Conflict, not a Forbidden).
func CanDeleteOrder(c Context, order *models.Order) bool {
	return c.IsAdmin() || c.Owns(order.UserID)
}

// CanListAllOrders reports whether the caller may see orders beyond their
// own. Non-privileged callers are always scoped to their own user ID.
func CanListAllOrders(c Context) bool {
	return c.IsStaffOrAdmin()
}
