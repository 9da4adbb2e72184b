package config

import (
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hermione06/cafeteria-management-system/models"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return db
}

func TestSeedAdmin(t *testing.T) {
	db := newSeedDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := defaults()
	cfg.Seed.AdminPassword = "bootstrap-secret"

	if err := Seed(db, cfg, log); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != models.RoleAdmin || !admin.IsActive || !admin.IsVerified {
		t.Errorf("admin = role %s active %v verified %v, want admin/true/true", admin.Role, admin.IsActive, admin.IsVerified)
	}
	if admin.Email != "admin@cafehub.com" {
		t.Errorf("admin email = %q, want the default", admin.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("bootstrap-secret")) != nil {
		t.Errorf("admin password hash does not match the configured password")
	}

	// Running again must not duplicate or overwrite.
	if err := Seed(db, cfg, log); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("user count after reseeding = %d, want 1", count)
	}
}

func TestSeedSkippedWithoutPassword(t *testing.T) {
	db := newSeedDB(t)
	cfg := defaults()

	if err := Seed(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("user count = %d, want 0 when no admin password is configured", count)
	}
}

func TestSeedSampleMenu(t *testing.T) {
	db := newSeedDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := defaults()
	cfg.Seed.SampleMenu = true

	if err := Seed(db, cfg, log); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	var count int64
	db.Model(&models.MenuItem{}).Count(&count)
	if count != 15 {
		t.Errorf("menu item count = %d, want 15", count)
	}

	var espresso models.MenuItem
	if err := db.Where("name = ?", "Espresso").First(&espresso).Error; err != nil {
		t.Fatalf("espresso not seeded: %v", err)
	}
	if espresso.Price != 2.50 || espresso.Category != "beverages" || !espresso.IsAvailable {
		t.Errorf("espresso = %.2f %s available %v, want 2.50 beverages true", espresso.Price, espresso.Category, espresso.IsAvailable)
	}

	// A non-empty menu is left alone.
	if err := db.Delete(&espresso).Error; err != nil {
		t.Fatalf("deleting espresso: %v", err)
	}
	if err := Seed(db, cfg, log); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	db.Model(&models.MenuItem{}).Count(&count)
	if count != 14 {
		t.Errorf("menu item count after reseeding = %d, want 14 (a non-empty menu is left alone)", count)
	}
}
