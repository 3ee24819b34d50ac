package repository

import (
	"gorm.io/gorm"

	"shop_manager/internal/models"
)

type TargetRepository interface {
	GetBySalesmanMonth(salesmanID uint, monthYear string) (*models.Target, error)
	GetByShopMonth(shopID uint, monthYear string) ([]models.Target, error)
}

type targetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) GetBySalesmanMonth(salesmanID uint, monthYear string) (*models.Target, error) {
	var target models.Target
	err := r.db.Where("salesman_id = ? AND month_year = ?", salesmanID, monthYear).First(&target).Error
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *targetRepository) GetByShopMonth(shopID uint, monthYear string) ([]models.Target, error) {
	var targets []models.Target
	err := r.db.Where("shop_id = ? AND month_year = ?", shopID, monthYear).Find(&targets).Error
	return targets, err
}
