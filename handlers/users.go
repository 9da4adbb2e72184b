package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
)

type UserHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewUserHandler(store *repositories.Store, log *slog.Logger) *UserHandler {
	return &UserHandler{store: store, log: log.With("component", "user_handler")}
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ListUsers returns one page of accounts. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var filter repositories.UserFilter
	if v := c.Query("role"); v != "" {
		if !models.ValidRole(models.UserRole(v)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		filter.Role = models.UserRole(v)
	}
	if v := c.Query("is_active"); v != "" {
		active := strings.ToLower(v) == "true"
		filter.IsActive = &active
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	page, perPage := parsePagination(c)

	users, pagination, err := h.store.Users.List(filter, page, perPage)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	out := make([]map[string]any, len(users))
	for i := range users {
		out[i] = users[i].ToDict()
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "pagination": pagination.ToDict()})
}

// GetUser returns a single account. Users may view their own profile,
// admins may view anyone's.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}
	ctx := middleware.GetAuthContext(c)
	if !ctx.IsAdmin() && !ctx.Owns(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	user, err := h.store.Users.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user.ToDict())
}

// UpdateUser edits an account. Users may edit their own username and
// email; role and active status are admin only. Changing the email
// resets verification.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}
	ctx := middleware.GetAuthContext(c)
	if !ctx.IsAdmin() && !ctx.Owns(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	user, err := h.store.Users.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Role != nil {
		if !ctx.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can change user roles"})
			return
		}
		if !models.ValidRole(models.UserRole(*req.Role)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
			return
		}
		user.Role = models.UserRole(*req.Role)
	}

	if req.Username != nil {
		existing, err := h.store.Users.GetByUsername(*req.Username)
		if err == nil && existing.ID != id {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		} else if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			respondWithError(c, h.log, err)
			return
		}
		user.Username = *req.Username
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, err := h.store.Users.GetByEmail(email)
		if err == nil && existing.ID != id {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
			return
		} else if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			respondWithError(c, h.log, err)
			return
		}
		if email != user.Email {
			user.Email = email
			user.IsVerified = false
			user.VerificationToken = uuid.NewString()
		}
	}

	if req.IsActive != nil {
		if !ctx.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can change active status"})
			return
		}
		user.IsActive = *req.IsActive
	}

	if err := h.store.Users.Update(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("user updated", "user_id", user.ID, "updated_by", ctx.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user.ToDict()})
}

// DeleteUser removes an account. Admin only; self-deletion is refused.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}
	ctx := middleware.GetAuthContext(c)
	if ctx.Owns(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	user, err := h.store.Users.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	if err := h.store.Users.Delete(user); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("user deleted", "user_id", id, "deleted_by", ctx.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GetStats reports account totals. Admin only.
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.store.Users.Stats()
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_users":    stats.TotalUsers,
		"active_users":   stats.ActiveUsers,
		"verified_users": stats.VerifiedUsers,
		"users_by_role":  stats.UsersByRole,
	})
}
