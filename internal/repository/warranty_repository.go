package repository

import (
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/models"
)

type WarrantyRepository interface {
	// CreateFiling persists the warranty, its linked sale and the optional
	// commission as one transaction, wiring the references both ways.
	CreateFiling(warranty *models.Warranty, sale *models.Sale, commission *models.Commission) error

	GetByID(id uint) (*models.Warranty, error)
	GetByShop(shopID uint) ([]models.Warranty, error)
	GetByIMEI(imei string) (*models.Warranty, error)
	// GetExpiringWithin returns warranties whose expiry falls inside the next
	// `days` days, for the expiry notice listing.
	GetExpiringWithin(shopID uint, days int, now time.Time) ([]models.Warranty, error)
}

type warrantyRepository struct {
	db *gorm.DB
}

func NewWarrantyRepository(db *gorm.DB) WarrantyRepository {
	return &warrantyRepository{db: db}
}

func (r *warrantyRepository) CreateFiling(warranty *models.Warranty, sale *models.Sale, commission *models.Commission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(warranty).Error; err != nil {
			return err
		}
		sale.WarrantyID = &warranty.ID
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		if err := tx.Model(warranty).Update("sale_id", sale.ID).Error; err != nil {
			return err
		}
		if commission != nil {
			commission.SaleID = sale.ID
			if err := tx.Create(commission).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *warrantyRepository) GetByID(id uint) (*models.Warranty, error) {
	var warranty models.Warranty
	err := r.db.First(&warranty, id).Error
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (r *warrantyRepository) GetByShop(shopID uint) ([]models.Warranty, error) {
	var warranties []models.Warranty
	err := r.db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&warranties).Error
	return warranties, err
}

func (r *warrantyRepository) GetByIMEI(imei string) (*models.Warranty, error) {
	var warranty models.Warranty
	err := r.db.Where("imei = ?", imei).First(&warranty).Error
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (r *warrantyRepository) GetExpiringWithin(shopID uint, days int, now time.Time) ([]models.Warranty, error) {
	// Expiry is created_at + warranty_period months; the window is evaluated
	// in SQL so the listing stays a single query.
	var warranties []models.Warranty
	cutoff := now.AddDate(0, 0, days)
	err := r.db.Where("shop_id = ?", shopID).
		Where("created_at + (warranty_period || ' months')::interval > ?", now).
		Where("created_at + (warranty_period || ' months')::interval <= ?", cutoff).
		Order("created_at ASC").
		Find(&warranties).Error
	return warranties, err
}
