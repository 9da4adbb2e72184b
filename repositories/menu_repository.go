package repositories

import (
	"errors"
	"strings"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MenuFilter narrows a menu listing.
type MenuFilter struct {
	Category      string
	AvailableOnly bool
	Search        string
}

type MenuRepositoryInterface interface {
	Create(item *models.MenuItem) error
	GetByID(id uint) (*models.MenuItem, error)
	// GetByIDForUpdate locks the row until the surrounding transaction
	// ends, so availability and price stay consistent while order lines
	// are built against them.
	GetByIDForUpdate(id uint) (*models.MenuItem, error)
	Update(item *models.MenuItem) error
	Delete(item *models.MenuItem) error
	List(filter MenuFilter, page, perPage int) ([]models.MenuItem, *utils.Pagination, error)
	DistinctCategories() ([]string, error)
	// CountOrderReferences reports how many order lines reference the item.
	CountOrderReferences(id uint) (int64, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepositoryInterface {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *menuRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) GetByIDForUpdate(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) Update(item *models.MenuItem) error {
	return r.db.Save(item).Error
}

func (r *menuRepository) Delete(item *models.MenuItem) error {
	return r.db.Delete(item).Error
}

func (r *menuRepository) List(filter MenuFilter, page, perPage int) ([]models.MenuItem, *utils.Pagination, error) {
	query := r.db.Model(&models.MenuItem{})

	if filter.Category != "" {
		query = query.Where("category = ?", models.NormalizeCategory(filter.Category))
	}
	if filter.AvailableOnly {
		query = query.Where("is_available = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	query = query.Order("name asc")

	var items []models.MenuItem
	pagination, err := utils.Paginate(query, page, perPage, &items)
	if err != nil {
		return nil, nil, err
	}
	return items, pagination, nil
}

func (r *menuRepository) DistinctCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.MenuItem{}).Distinct().Order("category asc").Pluck("category", &categories).Error
	return categories, err
}

func (r *menuRepository) CountOrderReferences(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&count).Error
	return count, err
}
