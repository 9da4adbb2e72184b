package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/services"
	"github.com/hermione06/cafeteria-management-system/utils"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

type MenuHandler struct {
	svc      *services.MenuService
	uploader *utils.S3Uploader
	log      *slog.Logger
}

func NewMenuHandler(svc *services.MenuService, uploader *utils.S3Uploader, log *slog.Logger) *MenuHandler {
	return &MenuHandler{svc: svc, uploader: uploader, log: log.With("component", "menu_handler")}
}

type CreateMenuItemRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	Category      string   `json:"category"`
	ImageURL      string   `json:"image_url"`
	StockQuantity int      `json:"stock_quantity"`
	IsAvailable   *bool    `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	Category      *string  `json:"category"`
	ImageURL      *string  `json:"image_url"`
	StockQuantity *int     `json:"stock_quantity"`
	IsAvailable   *bool    `json:"is_available"`
}

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// ListItems returns one page of the menu. By default only available
// items are shown; pass available=false to include everything.
func (h *MenuHandler) ListItems(c *gin.Context) {
	filter := repositories.MenuFilter{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: strings.ToLower(c.DefaultQuery("available", "true")) == "true",
	}
	page, perPage := parsePagination(c)

	items, pagination, err := h.svc.ListItems(filter, page, perPage)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	out := make([]map[string]any, len(items))
	for i := range items {
		out[i] = items[i].ToDict()
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "pagination": pagination.ToDict()})
}

// GetCategories lists the categories currently on the menu.
func (h *MenuHandler) GetCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories()
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetItem returns a single menu item.
func (h *MenuHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "menu item ID")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item.ToDict())
}

// CreateItem adds a menu item. Admin only.
func (h *MenuHandler) CreateItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" || req.Price == nil || req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, price, and category are required"})
		return
	}

	item, err := h.svc.CreateItem(middleware.GetAuthContext(c), services.CreateMenuItemInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created successfully", "item": item.ToDict()})
}

// UpdateItem applies a partial update to a menu item. Staff and admin.
func (h *MenuHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "menu item ID")
	if !ok {
		return
	}
	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.UpdateItem(middleware.GetAuthContext(c), id, services.UpdateMenuItemInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		StockQuantity: req.StockQuantity,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated successfully", "item": item.ToDict()})
}

// SetAvailability toggles whether an item can be ordered. Staff and
// admin.
func (h *MenuHandler) SetAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "menu item ID")
	if !ok {
		return
	}
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_available field is required"})
		return
	}

	item, err := h.svc.SetAvailability(middleware.GetAuthContext(c), id, *req.IsAvailable)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	label := "available"
	if !item.IsAvailable {
		label = "unavailable"
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item marked as " + label, "item": item.ToDict()})
}

// DeleteItem removes a menu item. Admin only; items referenced by orders
// are refused.
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "menu item ID")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(middleware.GetAuthContext(c), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

// UploadImage stores a menu item photo in S3 and saves its URL on the
// item. Staff and admin.
func (h *MenuHandler) UploadImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "menu item ID")
	if !ok {
		return
	}
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Allowed: jpg, jpeg, png, gif"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	key := "menu/" + uuid.NewString() + ext
	url, err := h.uploader.Upload(c.Request.Context(), key, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	item, err := h.svc.UpdateItem(middleware.GetAuthContext(c), id, services.UpdateMenuItemInput{ImageURL: &url})
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully", "item": item.ToDict()})
}
