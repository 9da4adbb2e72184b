package config

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hermione06/cafeteria-management-system/models"
)

// Seed applies the configured bootstrap data after migration: a default
// admin account when an admin password is configured, and the sample menu
// when enabled. Both are idempotent and leave existing rows alone.
func Seed(db *gorm.DB, cfg *Config, log *slog.Logger) error {
	if cfg.Seed.AdminPassword != "" {
		if err := seedAdmin(db, cfg, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	if cfg.Seed.SampleMenu {
		if err := seedSampleMenu(db, log); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB, cfg *Config, log *slog.Logger) error {
	var existing models.User
	err := db.Where("username = ?", cfg.Seed.AdminUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:     cfg.Seed.AdminUsername,
		Email:        cfg.Seed.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("admin account seeded", "username", admin.Username)
	return nil
}

func seedSampleMenu(db *gorm.DB, log *slog.Logger) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []models.MenuItem{
		{Name: "Espresso", Description: "Strong Italian coffee shot", Price: 2.50, Category: "beverages", IsAvailable: true, StockQuantity: 100},
		{Name: "Cappuccino", Description: "Espresso with steamed milk and foam", Price: 3.50, Category: "beverages", IsAvailable: true, StockQuantity: 100},
		{Name: "Latte", Description: "Espresso with steamed milk", Price: 3.75, Category: "beverages", IsAvailable: true, StockQuantity: 100},
		{Name: "Iced Tea", Description: "Refreshing cold brewed tea", Price: 2.00, Category: "beverages", IsAvailable: true, StockQuantity: 50},
		{Name: "Club Sandwich", Description: "Triple-decker with turkey, bacon, lettuce, and tomato", Price: 7.50, Category: "food", IsAvailable: true, StockQuantity: 30},
		{Name: "Caesar Salad", Description: "Romaine lettuce with Caesar dressing and croutons", Price: 6.50, Category: "food", IsAvailable: true, StockQuantity: 25},
		{Name: "Margherita Pizza", Description: "Fresh tomato, mozzarella, and basil", Price: 8.00, Category: "food", IsAvailable: true, StockQuantity: 20},
		{Name: "Chicken Wrap", Description: "Grilled chicken with vegetables in a tortilla", Price: 6.00, Category: "food", IsAvailable: true, StockQuantity: 35},
		{Name: "French Fries", Description: "Crispy golden fries", Price: 3.00, Category: "snacks", IsAvailable: true, StockQuantity: 50},
		{Name: "Onion Rings", Description: "Crispy battered onion rings", Price: 3.50, Category: "snacks", IsAvailable: true, StockQuantity: 40},
		{Name: "Chicken Wings", Description: "Spicy buffalo wings", Price: 5.50, Category: "snacks", IsAvailable: true, StockQuantity: 30},
		{Name: "Chocolate Cake", Description: "Rich chocolate layer cake", Price: 4.50, Category: "desserts", IsAvailable: true, StockQuantity: 15},
		{Name: "Cheesecake", Description: "New York style cheesecake", Price: 5.00, Category: "desserts", IsAvailable: true, StockQuantity: 12},
		{Name: "Ice Cream Sundae", Description: "Vanilla ice cream with toppings", Price: 3.50, Category: "desserts", IsAvailable: true, StockQuantity: 20},
		{Name: "Apple Pie", Description: "Classic homemade apple pie", Price: 4.00, Category: "desserts", IsAvailable: true, StockQuantity: 10},
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	log.Info("sample menu seeded", "items", len(items))
	return nil
}
