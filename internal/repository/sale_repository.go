package repository

import (
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
)

// SalesTotals is the aggregate projection consumed by performance reporting.
type SalesTotals struct {
	Revenue   money.Money `json:"revenue"`
	Ganji     money.Money `json:"ganji"`
	Units     int         `json:"units"`
	SaleCount int64       `json:"sale_count"`
}

type SaleRepository interface {
	// CreateSettlement persists a sale and its optional commission as one
	// transaction: either both rows commit or neither does.
	CreateSettlement(sale *models.Sale, commission *models.Commission) error
	// UpdateSettlement saves a recomputed sale together with its commission
	// adjustment. commission may be nil (no change) or carry a zero ID
	// (create). cancelPending voids any still-pending commission on the sale.
	UpdateSettlement(sale *models.Sale, commission *models.Commission, cancelPending bool) error
	// Delete removes a sale and cascades to its commission; hard controls
	// soft-delete vs unscoped removal. The warranty back-reference is nulled
	// so no dangling link survives.
	Delete(id uint, hard bool) error

	GetByID(id uint) (*models.Sale, error)
	GetByShop(shopID uint) ([]models.Sale, error)
	GetBySalesman(salesmanID uint) ([]models.Sale, error)
	GetByDateRange(shopID uint, start, end time.Time) ([]models.Sale, error)
	TotalsForSalesman(salesmanID uint, start, end time.Time) (*SalesTotals, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateSettlement(sale *models.Sale, commission *models.Commission) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
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

func (r *saleRepository) UpdateSettlement(sale *models.Sale, commission *models.Commission, cancelPending bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sale).Error; err != nil {
			return err
		}
		if cancelPending {
			err := tx.Model(&models.Commission{}).
				Where("sale_id = ? AND status = ?", sale.ID, string(models.CommissionPending)).
				Update("status", string(models.CommissionCancelled)).Error
			if err != nil {
				return err
			}
		}
		if commission != nil {
			commission.SaleID = sale.ID
			if err := tx.Save(commission).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *saleRepository) Delete(id uint, hard bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Warranty{}).
			Where("sale_id = ?", id).
			Update("sale_id", nil).Error
		if err != nil {
			return err
		}
		commissions := tx.Where("sale_id = ?", id)
		sales := tx
		if hard {
			commissions = commissions.Unscoped()
			sales = sales.Unscoped()
		}
		if err := commissions.Delete(&models.Commission{}).Error; err != nil {
			return err
		}
		return sales.Delete(&models.Sale{}, id).Error
	})
}

func (r *saleRepository) GetByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) GetByShop(shopID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Where("shop_id = ?", shopID).Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepository) GetBySalesman(salesmanID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Where("salesman_id = ?", salesmanID).Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepository) GetByDateRange(shopID uint, start, end time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Where("shop_id = ? AND created_at BETWEEN ? AND ?", shopID, start, end).
		Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepository) TotalsForSalesman(salesmanID uint, start, end time.Time) (*SalesTotals, error) {
	var totals SalesTotals
	err := r.db.Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(ganji), 0) AS ganji, COALESCE(SUM(quantity), 0) AS units, COUNT(*) AS sale_count").
		Where("salesman_id = ? AND created_at BETWEEN ? AND ?", salesmanID, start, end).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
