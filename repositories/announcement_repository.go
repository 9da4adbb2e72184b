package repositories

import (
	"errors"
	"time"

	"github.com/hermione06/cafeteria-management-system/apperrors"
	"github.com/hermione06/cafeteria-management-system/models"

	"gorm.io/gorm"
)

type AnnouncementRepositoryInterface interface {
	Create(a *models.Announcement) error
	GetByID(id uint) (*models.Announcement, error)
	Update(a *models.Announcement) error
	Delete(a *models.Announcement) error
	// ListActive returns active, non-expired announcements, most important
	// and newest first.
	ListActive() ([]models.Announcement, error)
	// ListAll returns every announcement for the admin view, newest first.
	ListAll() ([]models.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepositoryInterface {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(a *models.Announcement) error {
	return r.db.Create(a).Error
}

func (r *announcementRepository) GetByID(id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Announcement not found")
		}
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepository) Update(a *models.Announcement) error {
	return r.db.Save(a).Error
}

func (r *announcementRepository) Delete(a *models.Announcement) error {
	return r.db.Delete(a).Error
}

func (r *announcementRepository) ListActive() ([]models.Announcement, error) {
	var announcements []models.Announcement
	err := r.db.
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC()).
		Order("CASE priority WHEN 'high' THEN 3 WHEN 'normal' THEN 2 ELSE 1 END DESC, created_at DESC").
		Find(&announcements).Error
	return announcements, err
}

func (r *announcementRepository) ListAll() ([]models.Announcement, error) {
	var announcements []models.Announcement
	err := r.db.Order("created_at desc").Find(&announcements).Error
	return announcements, err
}
