package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
)

func newAnnouncementRouter(store *repositories.Store) *gin.Engine {
	h := NewAnnouncementHandler(store, discardLogger())

	r := gin.New()
	announcements := r.Group("/api/announcements")
	{
		announcements.GET("", h.ListActive)
		announcements.GET("/:id", h.GetAnnouncement)

		admin := announcements.Group("")
		admin.Use(middleware.AuthRequired(testSecret), middleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/all", h.ListAll)
			admin.POST("", h.CreateAnnouncement)
			admin.PUT("/:id", h.UpdateAnnouncement)
			admin.DELETE("/:id", h.DeleteAnnouncement)
		}
	}
	return r
}

func seedAnnouncement(t *testing.T, store *repositories.Store, title, priority string, createdAt time.Time, active bool, expiresAt *time.Time) *models.Announcement {
	t.Helper()
	a := &models.Announcement{
		Title:     title,
		Message:   "message for " + title,
		Priority:  priority,
		IsActive:  active,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	if err := store.Announcements.Create(a); err != nil {
		t.Fatalf("seeding announcement %s: %v", title, err)
	}
	return a
}

func TestAnnouncementLifecycle(t *testing.T) {
	store := newTestStore(t)
	r := newAnnouncementRouter(store)
	admin := seedUser(t, store, "boss", models.RoleAdmin)
	token := accessToken(t, admin)

	w := doJSON(t, r, http.MethodPost, "/api/announcements", token, gin.H{
		"title":      "Kitchen closed Friday",
		"message":    "Deep cleaning, back Monday.",
		"priority":   "high",
		"expires_at": "2026-12-01T00:00:00Z",
	})
	body := wantStatus(t, w, http.StatusCreated)
	if body["message"] != "Announcement created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	created, _ := body["announcement"].(map[string]any)
	if created["priority"] != "high" || created["is_active"] != true {
		t.Errorf("announcement = %v, want high/active", created)
	}
	if created["created_by"] != float64(admin.ID) {
		t.Errorf("created_by = %v, want %d", created["created_by"], admin.ID)
	}
	id := uint(created["id"].(float64))

	t.Run("public read", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/announcements/%d", id), "", nil)
		body := wantStatus(t, w, http.StatusOK)
		if body["title"] != "Kitchen closed Friday" {
			t.Errorf("title = %v", body["title"])
		}
		if body["expires_at"] != "2026-12-01T00:00:00Z" {
			t.Errorf("expires_at = %v, want 2026-12-01T00:00:00Z", body["expires_at"])
		}
	})

	t.Run("update clears expiry", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/announcements/%d", id), token, gin.H{
			"expires_at": "",
			"priority":   "normal",
		})
		body := wantStatus(t, w, http.StatusOK)
		updated, _ := body["announcement"].(map[string]any)
		if updated["expires_at"] != nil {
			t.Errorf("expires_at = %v, want null after clearing", updated["expires_at"])
		}
		if updated["priority"] != "normal" {
			t.Errorf("priority = %v, want normal", updated["priority"])
		}
	})

	t.Run("deactivate hides from public list", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/announcements/%d", id), token, gin.H{"is_active": false})
		wantStatus(t, w, http.StatusOK)

		w = doJSON(t, r, http.MethodGet, "/api/announcements", "", nil)
		body := wantStatus(t, w, http.StatusOK)
		if list, _ := body["announcements"].([]any); len(list) != 0 {
			t.Errorf("active list has %d entries, want 0", len(list))
		}

		// Still visible to the admin view.
		w = doJSON(t, r, http.MethodGet, "/api/announcements/all", token, nil)
		body = wantStatus(t, w, http.StatusOK)
		if list, _ := body["announcements"].([]any); len(list) != 1 {
			t.Errorf("admin list has %d entries, want 1", len(list))
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/announcements/%d", id), token, nil)
		body := wantStatus(t, w, http.StatusOK)
		if body["message"] != "Announcement deleted successfully" {
			t.Errorf("message = %v", body["message"])
		}

		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/announcements/%d", id), "", nil)
		wantErrorResponse(t, w, http.StatusNotFound, "Announcement not found")
	})
}

func TestAnnouncementValidation(t *testing.T) {
	store := newTestStore(t)
	r := newAnnouncementRouter(store)
	admin := seedUser(t, store, "boss", models.RoleAdmin)
	token := accessToken(t, admin)

	tests := []struct {
		name    string
		body    gin.H
		wantErr string
	}{
		{"missing title", gin.H{"message": "no title"}, "Title and message are required"},
		{"missing message", gin.H{"title": "no message"}, "Title and message are required"},
		{"unknown priority", gin.H{"title": "t", "message": "m", "priority": "urgent"}, "Invalid priority. Must be: low, normal, or high"},
		{"bad expiry", gin.H{"title": "t", "message": "m", "expires_at": "tomorrow"}, "Invalid expires_at format. Use ISO format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/announcements", token, tt.body)
			wantErrorResponse(t, w, http.StatusBadRequest, tt.wantErr)
		})
	}

	t.Run("admin only", func(t *testing.T) {
		staff := seedUser(t, store, "cook", models.RoleStaff)
		w := doJSON(t, r, http.MethodPost, "/api/announcements", accessToken(t, staff), gin.H{"title": "t", "message": "m"})
		wantErrorResponse(t, w, http.StatusForbidden, "Access denied. Required role(s): admin")
	})

	t.Run("update with unknown priority", func(t *testing.T) {
		a := seedAnnouncement(t, store, "existing", models.PriorityNormal, time.Now().UTC(), true, nil)
		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/announcements/%d", a.ID), token, gin.H{"priority": "urgent"})
		wantErrorResponse(t, w, http.StatusBadRequest, "Invalid priority")
	})
}

func TestActiveAnnouncementOrdering(t *testing.T) {
	store := newTestStore(t)
	r := newAnnouncementRouter(store)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	future := base.AddDate(1, 0, 0)
	past := base.AddDate(-1, 0, 0)

	// Creation order deliberately scrambled: priority must decide, not
	// recency, with created_at breaking ties.
	seedAnnouncement(t, store, "wifi password changed", models.PriorityLow, base.Add(4*time.Hour), true, nil)
	seedAnnouncement(t, store, "fire drill at noon", models.PriorityHigh, base, true, &future)
	seedAnnouncement(t, store, "new menu next week", models.PriorityNormal, base.Add(2*time.Hour), true, nil)
	seedAnnouncement(t, store, "yesterday's special", models.PriorityHigh, base.Add(3*time.Hour), true, &past)
	seedAnnouncement(t, store, "draft post", models.PriorityHigh, base.Add(5*time.Hour), false, nil)
	seedAnnouncement(t, store, "allergy notice", models.PriorityHigh, base.Add(time.Hour), true, nil)

	w := doJSON(t, r, http.MethodGet, "/api/announcements", "", nil)
	body := wantStatus(t, w, http.StatusOK)
	list, _ := body["announcements"].([]any)

	want := []string{"allergy notice", "fire drill at noon", "new menu next week", "wifi password changed"}
	if len(list) != len(want) {
		t.Fatalf("got %d announcements, want %d (%v)", len(list), len(want), body)
	}
	for i, entry := range list {
		a, _ := entry.(map[string]any)
		if a["title"] != want[i] {
			t.Errorf("announcements[%d] = %v, want %q", i, a["title"], want[i])
		}
	}
}
