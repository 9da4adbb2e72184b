package services

import (
	"log/slog"
	"time"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/auth"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/statemachine"
	"github.com/hermione06/cafeteria-management-system/utils"
)

// OrderService owns the order lifecycle: creation with price snapshots,
// line mutation on pending orders, status transitions, payment flags and
// deletion. Every multi-row mutation runs inside a single transaction.
type OrderService struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewOrderService(store *repositories.Store, log *slog.Logger) *OrderService {
	return &OrderService{store: store, log: log.With("component", "order_service")}
}

type OrderLineInput struct {
	MenuItemID uint
	Quantity   int
}

type CreateOrderInput struct {
	Items               []OrderLineInput
	SpecialInstructions string
}

type OrderListFilter struct {
	Status *models.OrderStatus
	IsPaid *bool
	UserID *uint
}

// CreateOrder creates a pending order from the given lines. Each line
// snapshots the menu item's current price into unit_price, so later
// catalog edits never change what this order charges. Any invalid line
// (missing item, unavailable item, bad quantity) fails the whole order and
// nothing is written.
func (s *OrderService) CreateOrder(ctx auth.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.Validation("Order items are required")
	}

	var orderID uint
	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order := &models.Order{
			UserID:              ctx.UserID,
			Status:              models.StatusPending,
			SpecialInstructions: in.SpecialInstructions,
		}
		for _, line := range in.Items {
			if line.MenuItemID == 0 {
				return apperrors.Validation("Each item must have menu_item_id and quantity")
			}
			item, err := tx.Menu.GetByIDForUpdate(line.MenuItemID)
			if err != nil {
				if apperrors.IsKind(err, apperrors.KindNotFound) {
					return apperrors.NotFound("Menu item %d not found", line.MenuItemID)
				}
				return err
			}
			if !item.IsAvailable {
				return apperrors.Conflict("%s is currently unavailable", item.Name)
			}
			if line.Quantity <= 0 {
				return apperrors.Validation("Quantity must be positive")
			}
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				Quantity:   line.Quantity,
				UnitPrice:  item.Price,
			})
		}
		if err := tx.Orders.Create(order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created", "order_id", orderID, "user_id", ctx.UserID, "lines", len(in.Items))
	return s.store.Orders.GetByID(orderID)
}

// AddItem adds a menu item to a pending order. If the order already has a
// line for that item the quantities merge and the existing unit_price is
// kept; the price is snapshotted only when a line is first created.
func (s *OrderService) AddItem(ctx auth.Context, orderID, menuItemID uint, quantity int) (*models.Order, error) {
	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if !auth.CanMutateOrderItems(ctx, order) {
			return apperrors.Forbidden("Access denied")
		}
		if order.Status != models.StatusPending {
			return apperrors.Conflict("Can only modify pending orders")
		}

		item, err := tx.Menu.GetByIDForUpdate(menuItemID)
		if err != nil {
			return err
		}
		if !item.IsAvailable {
			return apperrors.Conflict("%s is currently unavailable", item.Name)
		}
		if quantity <= 0 {
			return apperrors.Validation("Quantity must be positive")
		}

		for i := range order.Items {
			if order.Items[i].MenuItemID == menuItemID {
				order.Items[i].Quantity += quantity
				return tx.Orders.UpdateItem(&order.Items[i])
			}
		}
		return tx.Orders.CreateItem(&models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: item.ID,
			Quantity:   quantity,
			UnitPrice:  item.Price,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order item added", "order_id", orderID, "menu_item_id", menuItemID, "quantity", quantity, "user_id", ctx.UserID)
	return s.store.Orders.GetByID(orderID)
}

// RemoveItem removes quantity units of a line from a pending order. A
// quantity of zero, or one at or above the line's quantity, removes the
// whole line. Removing the last line leaves an empty pending order.
func (s *OrderService) RemoveItem(ctx auth.Context, orderID, itemID uint, quantity int) (*models.Order, error) {
	if quantity < 0 {
		return nil, apperrors.Validation("Invalid quantity")
	}

	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if !auth.CanMutateOrderItems(ctx, order) {
			return apperrors.Forbidden("Access denied")
		}
		if order.Status != models.StatusPending {
			return apperrors.Conflict("Can only modify pending orders")
		}

		var line *models.OrderItem
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				line = &order.Items[i]
				break
			}
		}
		if line == nil {
			return apperrors.NotFound("Order item not found")
		}

		if quantity == 0 || quantity >= line.Quantity {
			return tx.Orders.DeleteItem(line)
		}
		line.Quantity -= quantity
		return tx.Orders.UpdateItem(line)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order item removed", "order_id", orderID, "order_item_id", itemID, "quantity", quantity, "user_id", ctx.UserID)
	return s.store.Orders.GetByID(orderID)
}

// UpdateStatus moves an order to a new status. Staff and admin. Terminal
// orders reject every change; completing an order stamps completed_at.
func (s *OrderService) UpdateStatus(ctx auth.Context, orderID uint, status models.OrderStatus, adminNotes *string) (*models.Order, error) {
	if !auth.CanUpdateOrderStatus(ctx) {
		return nil, apperrors.Forbidden("Staff or admin access required")
	}
	if !models.ValidStatus(status) {
		return nil, apperrors.Validation("Invalid status")
	}

	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if err := statemachine.CanTransition(order.Status, status); err != nil {
			return apperrors.Conflict("%s", err.Error())
		}
		order.Status = status
		if status == models.StatusCompleted {
			now := time.Now().UTC()
			order.CompletedAt = &now
		}
		if adminNotes != nil {
			order.AdminNotes = *adminNotes
		}
		return tx.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status updated", "order_id", orderID, "status", status, "user_id", ctx.UserID)
	return s.store.Orders.GetByID(orderID)
}

// SetPayment records whether an order is paid and optionally how. Staff
// and admin. Payment is independent of status: any combination of the two
// is allowed.
func (s *OrderService) SetPayment(ctx auth.Context, orderID uint, isPaid bool, paymentMethod *string) (*models.Order, error) {
	if !auth.CanUpdateOrderPayment(ctx) {
		return nil, apperrors.Forbidden("Staff or admin access required")
	}

	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		order.IsPaid = isPaid
		if paymentMethod != nil {
			order.PaymentMethod = *paymentMethod
		}
		return tx.Orders.Update(order)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order payment updated", "order_id", orderID, "is_paid", isPaid, "user_id", ctx.UserID)
	return s.store.Orders.GetByID(orderID)
}

// DeleteOrder removes an order and all of its lines. Owners may delete
// their own pending orders; admins may delete any order in any status.
func (s *OrderService) DeleteOrder(ctx auth.Context, orderID uint) error {
	err := s.store.InTransaction(func(tx *repositories.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if !auth.CanDeleteOrder(ctx, order) {
			return apperrors.Forbidden("Access denied")
		}
		if !ctx.IsAdmin() && order.Status != models.StatusPending {
			return apperrors.Conflict("Can only delete pending orders")
		}
		return tx.Orders.Delete(order)
	})
	if err != nil {
		return err
	}

	s.log.Info("order deleted", "order_id", orderID, "user_id", ctx.UserID)
	return nil
}

// GetOrder fetches a single order with its lines. Owner, staff or admin.
func (s *OrderService) GetOrder(ctx auth.Context, orderID uint) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !auth.CanReadOrder(ctx, order) {
		return nil, apperrors.Forbidden("Access denied")
	}
	return order, nil
}

// ListOrders returns one page of orders. Regular users only ever see
// their own; staff and admin see everything and may filter by user.
func (s *OrderService) ListOrders(ctx auth.Context, filter OrderListFilter, page, perPage int) ([]models.Order, *utils.Pagination, error) {
	if filter.Status != nil && !models.ValidStatus(*filter.Status) {
		return nil, nil, apperrors.Validation("Invalid status")
	}

	repoFilter := repositories.OrderFilter{
		Status: filter.Status,
		IsPaid: filter.IsPaid,
	}
	if auth.CanListAllOrders(ctx) {
		repoFilter.UserID = filter.UserID
	} else {
		uid := ctx.UserID
		repoFilter.UserID = &uid
	}
	return s.store.Orders.List(repoFilter, page, perPage)
}
