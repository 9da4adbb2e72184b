package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Username          string     `json:"username" gorm:"uniqueIndex;not null"`
	Email             string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash      string     `json:"-" gorm:"not null"`
	Role              UserRole   `json:"role" gorm:"not null;default:'user'"`
	IsActive          bool       `json:"is_active" gorm:"not null;default:true"`
	IsVerified        bool       `json:"is_verified" gorm:"not null;default:false"`
	VerificationToken string     `json:"-" gorm:"index"`
	ResetToken        string     `json:"-" gorm:"index"`
	ResetTokenExpiry  *time.Time `json:"-"`
	LastLogin         *time.Time `json:"last_login"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ToDict returns the external representation of a user. Password hash and
// tokens never leave the model.
func (u *User) ToDict() map[string]any {
	var lastLogin any
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"email":       u.Email,
		"role":        u.Role,
		"is_active":   u.IsActive,
		"is_verified": u.IsVerified,
		"last_login":  lastLogin,
		"created_at":  u.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":  u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
