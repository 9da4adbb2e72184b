package repositories

import (
	"errors"
	"strings"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/models"
	"github.com/hermione06/cafeteria-management-system/utils"

	"gorm.io/gorm"
)

// UserFilter narrows a user listing.
type UserFilter struct {
	Role     models.UserRole
	IsActive *bool
	Search   string
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	TotalUsers    int64                     `json:"total_users"`
	ActiveUsers   int64                     `json:"active_users"`
	VerifiedUsers int64                     `json:"verified_users"`
	UsersByRole   map[models.UserRole]int64 `json:"users_by_role"`
}

type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByVerificationToken(token string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(user *models.User) error
	List(filter UserFilter, page, perPage int) ([]models.User, *utils.Pagination, error)
	Stats() (*UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, r.translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy("username = ?", username)
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email = ?", email)
}

func (r *userRepository) GetByVerificationToken(token string) (*models.User, error) {
	return r.getBy("verification_token = ?", token)
}

func (r *userRepository) GetByResetToken(token string) (*models.User, error) {
	return r.getBy("reset_token = ?", token)
}

func (r *userRepository) getBy(cond string, value string) (*models.User, error) {
	var user models.User
	if err := r.db.Where(cond, value).First(&user).Error; err != nil {
		return nil, r.translate(err)
	}
	return &user, nil
}

func (r *userRepository) translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("User not found")
	}
	return err
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) Delete(user *models.User) error {
	return r.db.Delete(user).Error
}

func (r *userRepository) List(filter UserFilter, page, perPage int) ([]models.User, *utils.Pagination, error) {
	query := r.db.Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	query = query.Order("created_at desc")

	var users []models.User
	pagination, err := utils.Paginate(query, page, perPage, &users)
	if err != nil {
		return nil, nil, err
	}
	return users, pagination, nil
}

func (r *userRepository) Stats() (*UserStats, error) {
	stats := &UserStats{UsersByRole: make(map[models.UserRole]int64)}

	if err := r.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.User{}).Where("is_verified = ?", true).Count(&stats.VerifiedUsers).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Role  models.UserRole
		Count int64
	}
	err := r.db.Model(&models.User{}).Select("role, count(*) as count").Group("role").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.UsersByRole[row.Role] = row.Count
	}
	return stats, nil
}
