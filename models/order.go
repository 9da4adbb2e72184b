package models

import "time"

// OrderStatus represents all possible states of a cafeteria order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every valid order status, in lifecycle order.
func AllStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending,
		StatusConfirmed,
		StatusPreparing,
		StatusReady,
		StatusCompleted,
		StatusCancelled,
	}
}

// ValidStatus reports whether s is one of the six known statuses.
func ValidStatus(s OrderStatus) bool {
	for _, status := range AllStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

type Order struct {
	ID                  uint        `json:"id" gorm:"primaryKey"`
	UserID              uint        `json:"user_id" gorm:"not null;index"`
	User                User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Status              OrderStatus `json:"status" gorm:"not null;default:'pending'"`
	IsPaid              bool        `json:"is_paid" gorm:"not null;default:false"`
	PaymentMethod       string      `json:"payment_method"`
	SpecialInstructions string      `json:"special_instructions"`
	AdminNotes          string      `json:"admin_notes"`
	Items               []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt         *time.Time  `json:"completed_at"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null;index"`
	MenuItemID uint     `json:"menu_item_id" gorm:"not null;index"`
	MenuItem   MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnDelete:RESTRICT"`
	Quantity   int      `json:"quantity" gorm:"not null"`
	UnitPrice  float64  `json:"unit_price" gorm:"not null"` // snapshot of catalog price when the line was created
}

// Subtotal is quantity times the snapshotted unit price. Derived, never stored.
func (i *OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// CalculateTotal sums the order's line subtotals. Recomputed on every read so
// it can never drift from the lines; there is no stored total column.
func (o *Order) CalculateTotal() float64 {
	total := 0.0
	for i := range o.Items {
		total += o.Items[i].Subtotal()
	}
	return total
}

// IsTerminalStatus reports whether the order sits in a terminal status.
func (o *Order) IsTerminalStatus() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// ToDict returns the external representation of an order. Items are included
// when includeItems is set; the owner's user record when includeUser is set
// (staff and admin reads attach it, self reads don't need it).
func (o *Order) ToDict(includeItems, includeUser bool) map[string]any {
	var completedAt any
	if o.CompletedAt != nil {
		completedAt = o.CompletedAt.UTC().Format(time.RFC3339)
	}
	d := map[string]any{
		"id":                   o.ID,
		"user_id":              o.UserID,
		"status":               o.Status,
		"is_paid":              o.IsPaid,
		"payment_method":       o.PaymentMethod,
		"special_instructions": o.SpecialInstructions,
		"admin_notes":          o.AdminNotes,
		"total_price":          o.CalculateTotal(),
		"completed_at":         completedAt,
		"created_at":           o.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":           o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if includeItems {
		items := make([]map[string]any, 0, len(o.Items))
		for i := range o.Items {
			items = append(items, o.Items[i].ToDict(true))
		}
		d["items"] = items
	}
	if includeUser && o.User.ID != 0 {
		d["user"] = o.User.ToDict()
	}
	return d
}

// ToDict returns the external representation of an order line.
func (i *OrderItem) ToDict(includeMenuItem bool) map[string]any {
	d := map[string]any{
		"id":           i.ID,
		"menu_item_id": i.MenuItemID,
		"quantity":     i.Quantity,
		"unit_price":   i.UnitPrice,
		"subtotal":     i.Subtotal(),
	}
	if includeMenuItem && i.MenuItem.ID != 0 {
		d["menu_item"] = i.MenuItem.ToDict()
	}
	return d
}
