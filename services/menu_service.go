package services

import (
	"log/slog"
	"strings"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/auth"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/repositories"
	"github.com/hermione06/cafeteria-management-system/utils"
)

// MenuService owns catalog reads and writes, including the validation
// rules (non-negative price, fixed category set) and the referential
// delete policy.
type MenuService struct {
	store *repositories.Store
	log   *slog.Logger
}

func NewMenuService(store *repositories.Store, log *slog.Logger) *MenuService {
	return &MenuService{store: store, log: log.With("component", "menu_service")}
}

type CreateMenuItemInput struct {
	Name          string
	Description   string
	Price         float64
	Category      string
	ImageURL      string
	StockQuantity int
	IsAvailable   *bool
}

type UpdateMenuItemInput struct {
	Name          *string
	Description   *string
	Price         *float64
	Category      *string
	ImageURL      *string
	StockQuantity *int
	IsAvailable   *bool
}

// CreateItem adds a new menu item. Admin only.
func (s *MenuService) CreateItem(ctx auth.Context, in CreateMenuItemInput) (*models.MenuItem, error) {
	if !auth.CanCreateMenuItem(ctx) {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" {
		return nil, apperrors.Validation("Name, price, and category are required")
	}
	if in.Price < 0 {
		return nil, apperrors.Validation("Price must be non-negative")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperrors.Validation("Invalid category. Must be: beverages, food, snacks, or desserts")
	}
	if in.StockQuantity < 0 {
		return nil, apperrors.Validation("Stock quantity must be non-negative")
	}

	item := &models.MenuItem{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		Category:      models.NormalizeCategory(in.Category),
		ImageURL:      in.ImageURL,
		IsAvailable:   true,
		StockQuantity: in.StockQuantity,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if err := s.store.Menu.Create(item); err != nil {
		return nil, err
	}
	s.log.Info("menu item created", "menu_item_id", item.ID, "name", item.Name, "user_id", ctx.UserID)
	return item, nil
}

// UpdateItem applies a partial update. Staff and admin.
func (s *MenuService) UpdateItem(ctx auth.Context, id uint, in UpdateMenuItemInput) (*models.MenuItem, error) {
	if !auth.CanUpdateMenuItem(ctx) {
		return nil, apperrors.Forbidden("Staff or admin access required")
	}

	item, err := s.store.Menu.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperrors.Validation("Price must be non-negative")
		}
		item.Price = *in.Price
	}
	if in.Category != nil {
		if !models.ValidCategory(*in.Category) {
			return nil, apperrors.Validation("Invalid category. Must be: beverages, food, snacks, or desserts")
		}
		item.Category = models.NormalizeCategory(*in.Category)
	}
	if in.ImageURL != nil {
		item.ImageURL = *in.ImageURL
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return nil, apperrors.Validation("Stock quantity must be non-negative")
		}
		item.StockQuantity = *in.StockQuantity
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if err := s.store.Menu.Update(item); err != nil {
		return nil, err
	}
	s.log.Info("menu item updated", "menu_item_id", item.ID, "user_id", ctx.UserID)
	return item, nil
}

// SetAvailability flips is_available. Staff and admin. Stock is
// informational and never consulted here.
func (s *MenuService) SetAvailability(ctx auth.Context, id uint, available bool) (*models.MenuItem, error) {
	if !auth.CanToggleAvailability(ctx) {
		return nil, apperrors.Forbidden("Staff or admin access required")
	}

	item, err := s.store.Menu.GetByID(id)
	if err != nil {
		return nil, err
	}
	item.IsAvailable = available
	if err := s.store.Menu.Update(item); err != nil {
		return nil, err
	}
	s.log.Info("menu item availability changed", "menu_item_id", item.ID, "is_available", available, "user_id", ctx.UserID)
	return item, nil
}

// GetItem fetches a single menu item. Public.
func (s *MenuService) GetItem(id uint) (*models.MenuItem, error) {
	return s.store.Menu.GetByID(id)
}

// ListItems returns one page of the catalog. Public.
func (s *MenuService) ListItems(filter repositories.MenuFilter, page, perPage int) ([]models.MenuItem, *utils.Pagination, error) {
	return s.store.Menu.List(filter, page, perPage)
}

// ListCategories returns the categories currently present on the menu.
func (s *MenuService) ListCategories() ([]string, error) {
	return s.store.Menu.DistinctCategories()
}

// DeleteItem removes a menu item. Admin only. Items referenced by any order
// line are protected: order history keeps pointing at real rows.
func (s *MenuService) DeleteItem(ctx auth.Context, id uint) error {
	if !auth.CanDeleteMenuItem(ctx) {
		return apperrors.Forbidden("Admin access required")
	}

	err := s.store.InTransaction(func(tx *repositories.Store) error {
		item, err := tx.Menu.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		refs, err := tx.Menu.CountOrderReferences(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.Conflict("Menu item is referenced by existing orders and cannot be deleted")
		}
		return tx.Menu.Delete(item)
	})
	if err != nil {
		return err
	}
	s.log.Info("menu item deleted", "menu_item_id", id, "user_id", ctx.UserID)
	return nil
}
