package repositories

import (
	"errors"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows an order listing. Nil fields are unfiltered.
type OrderFilter struct {
	UserID *uint
	Status *models.OrderStatus
	IsPaid *bool
}

type OrderRepositoryInterface interface {
	// Create inserts the order together with any populated Items in one go.
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	// GetByIDForUpdate locks the order row for the rest of the surrounding
	// transaction. Items come preloaded; the caller mutates them through
	// CreateItem/UpdateItem/DeleteItem.
	GetByIDForUpdate(id uint) (*models.Order, error)
	Update(order *models.Order) error
	// Delete removes the order and all of its lines.
	Delete(order *models.Order) error
	CreateItem(item *models.OrderItem) error
	UpdateItem(item *models.OrderItem) error
	DeleteItem(item *models.OrderItem) error
	List(filter OrderFilter, page, perPage int) ([]models.Order, *utils.Pagination, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepositoryInterface {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.MenuItem").Preload("User").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(order *models.Order) error {
	// Save without touching associations; lines are managed explicitly so
	// a stale in-memory slice can never clobber them.
	return r.db.Omit(clause.Associations).Save(order).Error
}

func (r *orderRepository) Delete(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

func (r *orderRepository) CreateItem(item *models.OrderItem) error {
	return r.db.Create(item).Error
}

func (r *orderRepository) UpdateItem(item *models.OrderItem) error {
	return r.db.Save(item).Error
}

func (r *orderRepository) DeleteItem(item *models.OrderItem) error {
	return r.db.Delete(item).Error
}

func (r *orderRepository) List(filter OrderFilter, page, perPage int) ([]models.Order, *utils.Pagination, error) {
	query := r.db.Model(&models.Order{}).Preload("Items.MenuItem").Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	query = query.Order("created_at desc")

	var orders []models.Order
	pagination, err := utils.Paginate(query, page, perPage, &orders)
	if err != nil {
		return nil, nil, err
	}
	return orders, pagination, nil
}
