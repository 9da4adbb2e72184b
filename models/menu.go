package models

import (
	"strings"
	"time"
)

// AllowedCategories is the fixed set of menu categories. Input is
// normalized to lowercase before validation, so "Beverages" is accepted.
var AllowedCategories = []string{"beverages", "food", "snacks", "desserts"}

// NormalizeCategory lowercases and trims a raw category value.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// ValidCategory reports whether category (case-insensitive) is allowed.
func ValidCategory(category string) bool {
	normalized := NormalizeCategory(category)
	for _, c := range AllowedCategories {
		if c == normalized {
			return true
		}
	}
	return false
}

type MenuItem struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null;index"`
	Description   string    `json:"description"`
	Price         float64   `json:"price" gorm:"not null"`
	Category      string    `json:"category" gorm:"not null;index"`
	IsAvailable   bool      `json:"is_available" gorm:"not null;default:true"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null;default:0"`
	ImageURL      string    `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToDict returns the external representation of a menu item.
func (m *MenuItem) ToDict() map[string]any {
	return map[string]any{
		"id":             m.ID,
		"name":           m.Name,
		"description":    m.Description,
		"price":          m.Price,
		"category":       m.Category,
		"is_available":   m.IsAvailable,
		"stock_quantity": m.StockQuantity,
		"image_url":      m.ImageURL,
		"created_at":     m.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
