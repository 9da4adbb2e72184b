package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
)

type AnnouncementHandler struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewAnnouncementHandler(store *repositories.Store, log *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{store: store, log: log.With("component", "announcement_handler")}
}

type CreateAnnouncementRequest struct {
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Priority  string  `json:"priority"`
	IsActive  *bool   `json:"is_active"`
	ExpiresAt *string `json:"expires_at"`
}

type UpdateAnnouncementRequest struct {
	Title     *string `json:"title"`
	Message   *string `json:"message"`
	Priority  *string `json:"priority"`
	IsActive  *bool   `json:"is_active"`
	ExpiresAt *string `json:"expires_at"`
}

// parseExpiry accepts RFC 3339 timestamps with or without an offset.
func parseExpiry(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// ListActive returns active, unexpired announcements, highest priority
// first. Public.
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	announcements, err := h.store.Announcements.ListActive()
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	out := make([]map[string]any, len(announcements))
	for i := range announcements {
		out[i] = announcements[i].ToDict()
	}
	c.JSON(http.StatusOK, gin.H{"announcements": out})
}

// ListAll returns every announcement including inactive ones. Admin
// only.
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	announcements, err := h.store.Announcements.ListAll()
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	out := make([]map[string]any, len(announcements))
	for i := range announcements {
		out[i] = announcements[i].ToDict()
	}
	c.JSON(http.StatusOK, gin.H{"announcements": out})
}

// GetAnnouncement returns a single announcement. Public.
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "announcement ID")
	if !ok {
		return
	}
	announcement, err := h.store.Announcements.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, announcement.ToDict())
}

// CreateAnnouncement posts a new announcement. Admin only.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and message are required"})
		return
	}

	priority := models.PriorityNormal
	if req.Priority != "" {
		priority = req.Priority
		if !models.ValidPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority. Must be: low, normal, or high"})
			return
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		t, ok := parseExpiry(*req.ExpiresAt)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expires_at format. Use ISO format"})
			return
		}
		expiresAt = &t
	}

	announcement := &models.Announcement{
		Title:     req.Title,
		Message:   req.Message,
		Priority:  priority,
		IsActive:  true,
		CreatedBy: middleware.GetUserID(c),
		ExpiresAt: expiresAt,
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}

	if err := h.store.Announcements.Create(announcement); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("announcement created", "announcement_id", announcement.ID, "created_by", announcement.CreatedBy)
	c.JSON(http.StatusCreated, gin.H{"message": "Announcement created successfully", "announcement": announcement.ToDict()})
}

// UpdateAnnouncement edits an announcement. Admin only. An empty
// expires_at clears the expiry.
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "announcement ID")
	if !ok {
		return
	}
	announcement, err := h.store.Announcements.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	var req UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		announcement.Title = *req.Title
	}
	if req.Message != nil {
		announcement.Message = *req.Message
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		announcement.Priority = *req.Priority
	}
	if req.IsActive != nil {
		announcement.IsActive = *req.IsActive
	}
	if req.ExpiresAt != nil {
		if *req.ExpiresAt == "" {
			announcement.ExpiresAt = nil
		} else {
			t, ok := parseExpiry(*req.ExpiresAt)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expires_at format"})
				return
			}
			announcement.ExpiresAt = &t
		}
	}

	if err := h.store.Announcements.Update(announcement); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Announcement updated successfully", "announcement": announcement.ToDict()})
}

// DeleteAnnouncement removes an announcement. Admin only.
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "announcement ID")
	if !ok {
		return
	}
	announcement, err := h.store.Announcements.GetByID(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	if err := h.store.Announcements.Delete(announcement); err != nil {
		respondWithError(c, h.log, err)
		return
	}

	h.log.Info("announcement deleted", "announcement_id", id, "deleted_by", middleware.GetUserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted successfully"})
}
