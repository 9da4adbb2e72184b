package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hermione06/cafeteria-management-system/config"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
)

const testSecret = "unit-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

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

func accessToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateAccessToken(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generating access token: %v", err)
	}
	return token
}

func refreshToken(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateRefreshToken(user, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generating refresh token: %v", err)
	}
	return token
}

// doJSON performs a request against the test router. An empty token sends
// no Authorization header.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return body
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]any {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, status, w.Body.String())
	}
	return decodeBody(t, w)
}

func wantErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	body := wantStatus(t, w, status)
	if got, _ := body["error"].(string); got != message {
		t.Errorf("error = %q, want %q", got, message)
	}
}
