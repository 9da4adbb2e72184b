package handlers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/config"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/utils"
)

const minPasswordLength = 8

type AuthHandler struct {
	store  *repositories.Store
	cfg    *config.Config
	mailer utils.Mailer
	log    *slog.Logger
}

func NewAuthHandler(store *repositories.Store, cfg *config.Config, mailer utils.Mailer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{store: store, cfg: cfg, mailer: mailer, log: log.With("component", "auth_handler")}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// Register creates a new user account and sends a verification email.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}
	email := strings.ToLower(addr.Address)

	if len(req.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		role = models.UserRole(req.Role)
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: user, staff, or admin"})
			return
		}
	}

	if _, err := h.store.Users.GetByUsername(req.Username); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		respondWithError(c, h.log, err)
		return
	}
	if _, err := h.store.Users.GetByEmail(email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		respondWithError(c, h.log, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("hash password", err))
		return
	}

	user := &models.User{
		Username:          req.Username,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
		IsActive:          true,
		VerificationToken: uuid.NewString(),
	}
	if err := h.store.Users.Create(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	if err := h.mailer.SendVerificationEmail(user.Email, user.Username, user.VerificationToken); err != nil {
		h.log.Error("verification email failed", "error", err, "user_id", user.ID)
	}

	h.log.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please verify your email.",
		"user":    user.ToDict(),
	})
}

// VerifyEmail confirms a registration using the emailed token.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	user, err := h.store.Users.GetByVerificationToken(token)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token"})
			return
		}
		respondWithError(c, h.log, err)
		return
	}
	if user.IsVerified {
		c.JSON(http.StatusOK, gin.H{"message": "Email already verified"})
		return
	}

	user.IsVerified = true
	user.VerificationToken = ""
	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	if err := h.mailer.SendWelcomeEmail(user.Email, user.Username); err != nil {
		h.log.Error("welcome email failed", "error", err, "user_id", user.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"user":    user.ToDict(),
	})
}

// Login authenticates a user and returns an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.store.Users.GetByUsername(req.Username)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondWithError(c, h.log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email before logging in"})
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user, h.cfg.JWT.Secret, h.accessTTL())
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("generate access token", err))
		return
	}
	refreshToken, err := middleware.GenerateRefreshToken(user, h.cfg.JWT.Secret, h.refreshTTL())
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("generate refresh token", err))
		return
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("user logged in", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"message":       "Login successful",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user.ToDict(),
	})
}

// Refresh exchanges a valid refresh token for a new access token. The
// user is reloaded so role changes and deactivation take effect.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user, h.cfg.JWT.Secret, h.accessTTL())
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("generate access token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// Logout acknowledges a logout. Tokens are stateless, so the client just
// discards them.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful. Please discard your tokens."})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user.ToDict())
}

// ChangePassword updates the caller's password after checking the old
// one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Old password and new password are required"})
		return
	}

	user, err := h.store.Users.GetByID(middleware.GetUserID(c))
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid old password"})
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("hash password", err))
		return
	}
	user.PasswordHash = string(hash)
	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("password changed", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword issues a reset token and emails it when the address
// matches an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	user, err := h.store.Users.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent."})
			return
		}
		respondWithError(c, h.log, err)
		return
	}

	expiry := time.Now().UTC().Add(time.Hour)
	user.ResetToken = uuid.NewString()
	user.ResetTokenExpiry = &expiry
	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	if err := h.mailer.SendPasswordResetEmail(user.Email, user.Username, user.ResetToken); err != nil {
		h.log.Error("password reset email failed", "error", err, "user_id", user.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent to your email."})
}

// ResetPassword sets a new password using an emailed reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password is required"})
		return
	}
	if len(req.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters long"})
		return
	}

	user, err := h.store.Users.GetByResetToken(token)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
			return
		}
		respondWithError(c, h.log, err)
		return
	}
	if user.ResetTokenExpiry == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if user.ResetTokenExpiry.Before(time.Now().UTC()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reset token has expired"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondWithError(c, h.log, apperrors.Internal("hash password", err))
		return
	}
	user.PasswordHash = string(hash)
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("password reset", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. You can now login."})
}

func (h *AuthHandler) accessTTL() time.Duration {
	return time.Duration(h.cfg.JWT.AccessTTLMinutes) * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	return time.Duration(h.cfg.JWT.RefreshTTLHours) * time.Hour
}
