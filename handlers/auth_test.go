package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/hermione06/cafeteria-management-system/config"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/mocks"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/utils"
)

func newAuthRouter(store *repositories.Store, mailer utils.Mailer) *gin.Engine {
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: testSecret, AccessTTLMinutes: 60, RefreshTTLHours: 720},
	}
	h := NewAuthHandler(store, cfg, mailer, discardLogger())

	r := gin.New()
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/verify-email/:token", h.VerifyEmail)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password/:token", h.ResetPassword)

		authGroup.POST("/refresh", middleware.RefreshRequired(testSecret), h.Refresh)

		authed := authGroup.Group("")
		authed.Use(middleware.AuthRequired(testSecret))
		{
			authed.GET("/me", h.Me)
			authed.POST("/logout", h.Logout)
			authed.POST("/change-password", h.ChangePassword)
		}
	}
	return r
}

// seedAccount creates a verified, active user with a real bcrypt hash so
// login flows can be exercised end to end. MinCost keeps the tests fast.
func seedAccount(t *testing.T, store *repositories.Store, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := store.Users.Create(user); err != nil {
		t.Fatalf("seeding account %s: %v", username, err)
	}
	return user
}

func TestRegisterEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	mailer.EXPECT().SendVerificationEmail("new@example.com", "newuser", gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "newuser",
		"email":    "New@Example.COM",
		"password": "SecurePass123",
	})
	body := wantStatus(t, w, http.StatusCreated)
	if got := body["message"]; got != "User registered successfully. Please verify your email." {
		t.Errorf("message = %q", got)
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("response has no user object: %v", body)
	}
	if user["username"] != "newuser" {
		t.Errorf("username = %v, want newuser", user["username"])
	}
	if user["email"] != "new@example.com" {
		t.Errorf("email = %v, want normalized new@example.com", user["email"])
	}
	if user["is_verified"] != false {
		t.Errorf("is_verified = %v, want false", user["is_verified"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password_hash leaked in response")
	}
	// The token travels by email only, never in the response body.
	if _, ok := body["verification_token"]; ok {
		t.Error("verification_token leaked in response")
	}

	stored, err := store.Users.GetByUsername("newuser")
	if err != nil {
		t.Fatalf("loading registered user: %v", err)
	}
	if stored.VerificationToken == "" {
		t.Error("stored user has no verification token")
	}
	if stored.IsVerified {
		t.Error("stored user should start unverified")
	}
}

func TestRegisterWithRole(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	mailer.EXPECT().SendVerificationEmail("staffer@example.com", "staffer", gomock.Any()).Return(nil)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "staffer",
		"email":    "staffer@example.com",
		"password": "StaffPass123",
		"role":     "staff",
	})
	body := wantStatus(t, w, http.StatusCreated)
	user := body["user"].(map[string]any)
	if user["role"] != "staff" {
		t.Errorf("role = %v, want staff", user["role"])
	}
}

func TestRegisterValidation(t *testing.T) {
	store := newTestStore(t)
	// Strict mock: any attempt to send mail for a rejected registration fails the test.
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	tests := []struct {
		name    string
		payload gin.H
		message string
	}{
		{
			name:    "missing username",
			payload: gin.H{"email": "a@example.com", "password": "Password123"},
			message: "Username, email, and password are required",
		},
		{
			name:    "missing email",
			payload: gin.H{"username": "someone", "password": "Password123"},
			message: "Username, email, and password are required",
		},
		{
			name:    "missing password",
			payload: gin.H{"username": "someone", "email": "a@example.com"},
			message: "Username, email, and password are required",
		},
		{
			name:    "malformed email",
			payload: gin.H{"username": "someone", "email": "not-an-email", "password": "Password123"},
			message: "Invalid email address",
		},
		{
			name:    "short password",
			payload: gin.H{"username": "someone", "email": "a@example.com", "password": "short"},
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "unknown role",
			payload: gin.H{"username": "someone", "email": "a@example.com", "password": "Password123", "role": "superuser"},
			message: "Invalid role. Must be: user, staff, or admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", tt.payload)
			wantErrorResponse(t, w, http.StatusBadRequest, tt.message)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	seedAccount(t, store, "taken", "Password123")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "taken",
		"email":    "different@example.com",
		"password": "Password123",
	})
	wantErrorResponse(t, w, http.StatusConflict, "Username already exists")

	// Email comparison happens after normalization.
	w = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "different",
		"email":    "Taken@Example.COM",
		"password": "Password123",
	})
	wantErrorResponse(t, w, http.StatusConflict, "Email already registered")
}

func TestVerifyEmailEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	mailer.EXPECT().SendVerificationEmail("pat@example.com", "pat", gomock.Any()).Return(nil)
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "pat",
		"email":    "pat@example.com",
		"password": "Password123",
	})
	wantStatus(t, w, http.StatusCreated)

	registered, err := store.Users.GetByUsername("pat")
	if err != nil {
		t.Fatalf("loading registered user: %v", err)
	}
	token := registered.VerificationToken

	mailer.EXPECT().SendWelcomeEmail("pat@example.com", "pat").Return(nil)
	w = doJSON(t, r, http.MethodPost, "/api/auth/verify-email/"+token, "", nil)
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Email verified successfully" {
		t.Errorf("message = %q", got)
	}
	user := body["user"].(map[string]any)
	if user["is_verified"] != true {
		t.Errorf("is_verified = %v, want true", user["is_verified"])
	}

	verified, err := store.Users.GetByUsername("pat")
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if !verified.IsVerified {
		t.Error("user not marked verified in store")
	}
	if verified.VerificationToken != "" {
		t.Error("verification token should be cleared after use")
	}

	// The consumed token no longer resolves.
	w = doJSON(t, r, http.MethodPost, "/api/auth/verify-email/"+token, "", nil)
	wantErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired verification token")
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	w := doJSON(t, r, http.MethodPost, "/api/auth/verify-email/invalid-token-12345", "", nil)
	wantErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired verification token")
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	store := newTestStore(t)
	// No welcome email expected for a repeat verification.
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	user := seedAccount(t, store, "veteran", "Password123")
	user.VerificationToken = "regenerated-token"
	if err := store.Users.Update(user); err != nil {
		t.Fatalf("updating user: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/verify-email/regenerated-token", "", nil)
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Email already verified" {
		t.Errorf("message = %q", got)
	}
}

func TestLoginEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	seedAccount(t, store, "frank", "CorrectHorse9")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "frank",
		"password": "CorrectHorse9",
	})
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Login successful" {
		t.Errorf("message = %q", got)
	}
	access, _ := body["access_token"].(string)
	refresh, _ := body["refresh_token"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("missing tokens in response: %v", body)
	}
	user := body["user"].(map[string]any)
	if user["username"] != "frank" {
		t.Errorf("username = %v, want frank", user["username"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password_hash leaked in response")
	}

	stored, err := store.Users.GetByUsername("frank")
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if stored.LastLogin == nil {
		t.Error("last_login not stamped on login")
	}

	// The issued access token works against a protected route.
	w = doJSON(t, r, http.MethodGet, "/api/auth/me", access, nil)
	me := wantStatus(t, w, http.StatusOK)
	if me["username"] != "frank" {
		t.Errorf("me username = %v, want frank", me["username"])
	}
}

func TestLoginRejections(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	seedAccount(t, store, "frank", "CorrectHorse9")

	dormant := seedAccount(t, store, "dormant", "CorrectHorse9")
	dormant.IsActive = false
	if err := store.Users.Update(dormant); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	fresh := seedAccount(t, store, "fresh", "CorrectHorse9")
	fresh.IsVerified = false
	if err := store.Users.Update(fresh); err != nil {
		t.Fatalf("unverifying user: %v", err)
	}

	tests := []struct {
		name    string
		payload gin.H
		status  int
		message string
	}{
		{
			name:    "unknown username",
			payload: gin.H{"username": "nobody", "password": "Password123"},
			status:  http.StatusUnauthorized,
			message: "Invalid username or password",
		},
		{
			name:    "wrong password",
			payload: gin.H{"username": "frank", "password": "WrongPassword"},
			status:  http.StatusUnauthorized,
			message: "Invalid username or password",
		},
		{
			name:    "missing username",
			payload: gin.H{"password": "Password123"},
			status:  http.StatusBadRequest,
			message: "Username and password are required",
		},
		{
			name:    "missing password",
			payload: gin.H{"username": "frank"},
			status:  http.StatusBadRequest,
			message: "Username and password are required",
		},
		{
			name:    "deactivated account",
			payload: gin.H{"username": "dormant", "password": "CorrectHorse9"},
			status:  http.StatusForbidden,
			message: "Account is deactivated",
		},
		{
			name:    "unverified email",
			payload: gin.H{"username": "fresh", "password": "CorrectHorse9"},
			status:  http.StatusForbidden,
			message: "Please verify your email before logging in",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", tt.payload)
			wantErrorResponse(t, w, tt.status, tt.message)
		})
	}
}

func TestRefreshEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	user := seedUser(t, store, "alice", models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/api/auth/refresh", refreshToken(t, user), nil)
	body := wantStatus(t, w, http.StatusOK)
	access, _ := body["access_token"].(string)
	if access == "" {
		t.Fatalf("no access_token in response: %v", body)
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", access, nil)
	wantStatus(t, w, http.StatusOK)

	// An access token cannot stand in for a refresh token.
	w = doJSON(t, r, http.MethodPost, "/api/auth/refresh", accessToken(t, user), nil)
	wantErrorResponse(t, w, http.StatusUnauthorized, "Refresh token required")
}

func TestRefreshForMissingOrDeactivatedUser(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	ghost := seedUser(t, store, "ghost", models.RoleUser)
	token := refreshToken(t, ghost)
	if err := store.Users.Delete(ghost); err != nil {
		t.Fatalf("deleting user: %v", err)
	}
	w := doJSON(t, r, http.MethodPost, "/api/auth/refresh", token, nil)
	wantErrorResponse(t, w, http.StatusNotFound, "User not found")

	dormant := seedUser(t, store, "dormant", models.RoleUser)
	token = refreshToken(t, dormant)
	dormant.IsActive = false
	if err := store.Users.Update(dormant); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/refresh", token, nil)
	wantErrorResponse(t, w, http.StatusForbidden, "Account is deactivated")
}

func TestLogoutEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	user := seedUser(t, store, "alice", models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", accessToken(t, user), nil)
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Logout successful. Please discard your tokens." {
		t.Errorf("message = %q", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/logout", "", nil)
	wantErrorResponse(t, w, http.StatusUnauthorized, "Authorization header required (Bearer <token>)")
}

func TestMeEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	user := seedUser(t, store, "alice", models.RoleUser)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", accessToken(t, user), nil)
	body := wantStatus(t, w, http.StatusOK)

	// The profile is the response body itself, not wrapped in a key.
	if got := body["id"]; got != float64(user.ID) {
		t.Errorf("id = %v, want %d", got, user.ID)
	}
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}
	if body["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", body["email"])
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password_hash leaked in response")
	}

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestChangePasswordEndpoint(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	user := seedAccount(t, store, "charlie", "OldPassword123")
	token := accessToken(t, user)

	w := doJSON(t, r, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"old_password": "OldPassword123",
		"new_password": "NewPassword456",
	})
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Password changed successfully" {
		t.Errorf("message = %q", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "charlie",
		"password": "NewPassword456",
	})
	wantStatus(t, w, http.StatusOK)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "charlie",
		"password": "OldPassword123",
	})
	wantErrorResponse(t, w, http.StatusUnauthorized, "Invalid username or password")
}

func TestChangePasswordRejections(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	user := seedAccount(t, store, "charlie", "OldPassword123")
	token := accessToken(t, user)

	tests := []struct {
		name    string
		payload gin.H
		status  int
		message string
	}{
		{
			name:    "wrong old password",
			payload: gin.H{"old_password": "WrongPassword", "new_password": "NewPassword456"},
			status:  http.StatusUnauthorized,
			message: "Invalid old password",
		},
		{
			name:    "short new password",
			payload: gin.H{"old_password": "OldPassword123", "new_password": "weak"},
			status:  http.StatusBadRequest,
			message: "Password must be at least 8 characters long",
		},
		{
			name:    "missing fields",
			payload: gin.H{"old_password": "OldPassword123"},
			status:  http.StatusBadRequest,
			message: "Old password and new password are required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/change-password", token, tt.payload)
			wantErrorResponse(t, w, tt.status, tt.message)
		})
	}

	w := doJSON(t, r, http.MethodPost, "/api/auth/change-password", "", gin.H{
		"old_password": "OldPassword123",
		"new_password": "NewPassword456",
	})
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)
	seedAccount(t, store, "dave", "OriginalPass1")

	mailer.EXPECT().SendPasswordResetEmail("dave@example.com", "dave", gomock.Any()).Return(nil)
	w := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "dave@example.com"})
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Password reset link sent to your email." {
		t.Errorf("message = %q", got)
	}

	stored, err := store.Users.GetByUsername("dave")
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if stored.ResetToken == "" || stored.ResetTokenExpiry == nil {
		t.Fatalf("reset token not issued: token=%q expiry=%v", stored.ResetToken, stored.ResetTokenExpiry)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password/"+stored.ResetToken, "", gin.H{
		"password": "BrandNewPass1",
	})
	body = wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "Password reset successfully. You can now login." {
		t.Errorf("message = %q", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "dave",
		"password": "BrandNewPass1",
	})
	wantStatus(t, w, http.StatusOK)

	reloaded, err := store.Users.GetByUsername("dave")
	if err != nil {
		t.Fatalf("reloading user: %v", err)
	}
	if reloaded.ResetToken != "" || reloaded.ResetTokenExpiry != nil {
		t.Error("reset token should be cleared after use")
	}

	// The consumed token cannot be replayed.
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password/"+stored.ResetToken, "", gin.H{
		"password": "AnotherPass12",
	})
	wantErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired reset token")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	store := newTestStore(t)
	// Strict mock: no mail goes out for an unknown address.
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	w := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "", gin.H{"email": "nobody@example.com"})
	body := wantStatus(t, w, http.StatusOK)
	if got := body["message"]; got != "If the email exists, a reset link has been sent." {
		t.Errorf("message = %q", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/forgot-password", "", gin.H{})
	wantErrorResponse(t, w, http.StatusBadRequest, "Email is required")
}

func TestResetPasswordRejections(t *testing.T) {
	store := newTestStore(t)
	mailer := mocks.NewMockMailer(gomock.NewController(t))
	r := newAuthRouter(store, mailer)

	w := doJSON(t, r, http.MethodPost, "/api/auth/reset-password/any-token", "", gin.H{})
	wantErrorResponse(t, w, http.StatusBadRequest, "New password is required")

	// Length is checked before the token is even looked up.
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password/any-token", "", gin.H{"password": "weak"})
	wantErrorResponse(t, w, http.StatusBadRequest, "Password must be at least 8 characters long")

	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password/wrong-token", "", gin.H{"password": "LongEnough123"})
	wantErrorResponse(t, w, http.StatusBadRequest, "Invalid or expired reset token")

	expired := seedAccount(t, store, "late", "OriginalPass1")
	past := time.Now().UTC().Add(-time.Minute)
	expired.ResetToken = "expired-token"
	expired.ResetTokenExpiry = &past
	if err := store.Users.Update(expired); err != nil {
		t.Fatalf("updating user: %v", err)
	}
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password/expired-token", "", gin.H{"password": "LongEnough123"})
	wantErrorResponse(t, w, http.StatusBadRequest, "Reset token has expired")
}
