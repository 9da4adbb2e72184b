package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/auth"
	"github.com/hermione06/cafeteria-management-system/config"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
)

// newTestStore opens a fresh in-memory database per test. A single
// connection keeps every gorm session on the same sqlite handle.
func newTestStore(t *testing.T) *repositories.Store {
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
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return repositories.NewStore(db)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, store *repositories.Store, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         role,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := store.Users.Create(user); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return user
}

func seedMenuItem(t *testing.T, store *repositories.Store, name string, price float64, available bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		Name:        name,
		Price:       price,
		Category:    "food",
		IsAvailable: available,
	}
	if err := store.Menu.Create(item); err != nil {
		t.Fatalf("seeding menu item %s: %v", name, err)
	}
	return item
}

func asCaller(u *models.User) auth.Context {
	return auth.Context{UserID: u.ID, Role: u.Role}
}

func wantBusinessError(t *testing.T, err error, kind apperrors.Kind, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s %q", kind, message)
	}
	if !apperrors.IsKind(err, kind) {
		t.Errorf("error kind = %v, want %v (err: %v)", apperrors.KindOf(err), kind, err)
	}
	if got := apperrors.MessageOf(err); got != message {
		t.Errorf("error message = %q, want %q", got, message)
	}
}
