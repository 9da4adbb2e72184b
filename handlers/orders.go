package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/services"
)

type OrderHandler struct {
	svc *services.OrderService
	log *slog.Logger
}

func NewOrderHandler(svc *services.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log.With("component", "order_handler")}
}

type OrderLineRequest struct {
	MenuItemID *uint `json:"menu_item_id"`
	Quantity   *int  `json:"quantity"`
}

type CreateOrderRequest struct {
	Items               []OrderLineRequest `json:"items"`
	SpecialInstructions string             `json:"special_instructions"`
}

type AddOrderItemRequest struct {
	MenuItemID *uint `json:"menu_item_id"`
	Quantity   *int  `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"admin_notes"`
}

type UpdateOrderPaymentRequest struct {
	IsPaid        *bool   `json:"is_paid" binding:"required"`
	PaymentMethod *string `json:"payment_method"`
}

// CreateOrder places a new order for the authenticated user.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.CreateOrderInput{SpecialInstructions: req.SpecialInstructions}
	for _, line := range req.Items {
		if line.MenuItemID == nil || line.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Each item must have menu_item_id and quantity"})
			return
		}
		in.Items = append(in.Items, services.OrderLineInput{MenuItemID: *line.MenuItemID, Quantity: *line.Quantity})
	}

	order, err := h.svc.CreateOrder(middleware.GetAuthContext(c), in)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order.ToDict(true, false)})
}

// ListOrders returns one page of orders. Regular users see only their
// own; staff and admin see all and may filter by user_id.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var filter services.OrderListFilter
	if v := c.Query("status"); v != "" {
		status := models.OrderStatus(strings.ToLower(v))
		filter.Status = &status
	}
	if v := c.Query("is_paid"); v != "" {
		paid := strings.ToLower(v) == "true"
		filter.IsPaid = &paid
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	page, perPage := parsePagination(c)

	ctx := middleware.GetAuthContext(c)
	orders, pagination, err := h.svc.ListOrders(ctx, filter, page, perPage)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}

	includeUser := ctx.IsStaffOrAdmin()
	out := make([]map[string]any, len(orders))
	for i := range orders {
		out[i] = orders[i].ToDict(true, includeUser)
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "pagination": pagination.ToDict()})
}

// GetOrder returns a single order with its lines.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	ctx := middleware.GetAuthContext(c)
	order, err := h.svc.GetOrder(ctx, id)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order.ToDict(true, ctx.IsStaffOrAdmin()))
}

// AddItem adds a menu item to a pending order, merging with an existing
// line for the same item.
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	var req AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MenuItemID == nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu_item_id and quantity are required"})
		return
	}

	order, err := h.svc.AddItem(middleware.GetAuthContext(c), id, *req.MenuItemID, *req.Quantity)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item added to order", "order": order.ToDict(true, false)})
}

// RemoveItem removes units of a line from a pending order. Without a
// quantity query parameter the whole line goes.
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId", "order item ID")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	order, err := h.svc.RemoveItem(middleware.GetAuthContext(c), id, itemID, quantity)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from order", "order": order.ToDict(true, false)})
}

// UpdateStatus moves an order through its lifecycle. Staff and admin.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.svc.UpdateStatus(middleware.GetAuthContext(c), id, models.OrderStatus(strings.ToLower(req.Status)), req.AdminNotes)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated to " + string(order.Status),
		"order":   order.ToDict(true, true),
	})
}

// UpdatePayment records the paid flag and payment method. Staff and
// admin.
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	var req UpdateOrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_paid is required"})
		return
	}

	order, err := h.svc.SetPayment(middleware.GetAuthContext(c), id, *req.IsPaid, req.PaymentMethod)
	if err != nil {
		respondWithError(c, h.log, err)
		return
	}
	label := "unpaid"
	if order.IsPaid {
		label = "paid"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order marked as " + label,
		"order":   order.ToDict(true, true),
	})
}

// DeleteOrder removes an order and its lines. Owners may delete pending
// orders; admins may delete any.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order ID")
	if !ok {
		return
	}
	if err := h.svc.DeleteOrder(middleware.GetAuthContext(c), id); err != nil {
		respondWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
