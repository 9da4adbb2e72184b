package models

import "time"

// Announcement priorities, lowest to highest.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

type Announcement struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"not null"`
	Message   string     `json:"message" gorm:"not null"`
	Priority  string     `json:"priority" gorm:"not null;default:'normal'"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedBy uint       `json:"created_by"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToDict returns the external representation of an announcement.
func (a *Announcement) ToDict() map[string]any {
	var expiresAt any
	if a.ExpiresAt != nil {
		expiresAt = a.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"id":         a.ID,
		"title":      a.Title,
		"message":    a.Message,
		"priority":   a.Priority,
		"is_active":  a.IsActive,
		"created_by": a.CreatedBy,
		"expires_at": expiresAt,
		"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
