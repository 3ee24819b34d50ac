package repository

import (
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
)

type CommissionRuleRepository interface {
	Create(rule *models.CommissionRule) error
	GetByID(id uint) (*models.CommissionRule, error)
	// GetActiveByShop returns the shop's active rule with tiers preloaded, or
	// gorm.ErrRecordNotFound when none is configured.
	GetActiveByShop(shopID uint) (*models.CommissionRule, error)
	GetByShop(shopID uint) ([]models.CommissionRule, error)
	Update(rule *models.CommissionRule) error
}

type commissionRuleRepository struct {
	db *gorm.DB
}

func NewCommissionRuleRepository(db *gorm.DB) CommissionRuleRepository {
	return &commissionRuleRepository{db: db}
}

func (r *commissionRuleRepository) Create(rule *models.CommissionRule) error {
	return r.db.Create(rule).Error
}

func (r *commissionRuleRepository) GetByID(id uint) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	err := r.db.Preload("Tiers").First(&rule, id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *commissionRuleRepository) GetActiveByShop(shopID uint) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	err := r.db.Preload("Tiers").
		Where("shop_id = ? AND is_active = ?", shopID, true).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *commissionRuleRepository) GetByShop(shopID uint) ([]models.CommissionRule, error) {
	var rules []models.CommissionRule
	err := r.db.Preload("Tiers").Where("shop_id = ?", shopID).Find(&rules).Error
	return rules, err
}

func (r *commissionRuleRepository) Update(rule *models.CommissionRule) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Replace the tier chain wholesale; tiers are only meaningful as a set.
		if err := tx.Where("rule_id = ?", rule.ID).Delete(&models.CommissionTier{}).Error; err != nil {
			return err
		}
		return tx.Save(rule).Error
	})
}

type CommissionRepository interface {
	GetByID(id uint) (*models.Commission, error)
	GetPendingBySale(saleID uint) (*models.Commission, error)
	GetBySalesman(salesmanID uint) ([]models.Commission, error)
	GetBySale(saleID uint) ([]models.Commission, error)
	UpdateStatus(id uint, status string) error
	// TotalForSalesmanPeriod sums non-cancelled commission amounts in the
	// window, for the performance projection.
	TotalForSalesmanPeriod(salesmanID uint, start, end time.Time) (money.Money, error)
}

type commissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) GetByID(id uint) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.First(&commission, id).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) GetPendingBySale(saleID uint) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.Where("sale_id = ? AND status = ?", saleID, string(models.CommissionPending)).
		First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

func (r *commissionRepository) GetBySalesman(salesmanID uint) ([]models.Commission, error) {
	var commissions []models.Commission
	err := r.db.Where("salesman_id = ?", salesmanID).Order("created_at DESC").Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepository) GetBySale(saleID uint) ([]models.Commission, error) {
	var commissions []models.Commission
	err := r.db.Where("sale_id = ?", saleID).Find(&commissions).Error
	return commissions, err
}

func (r *commissionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Commission{}).Where("id = ?", id).Update("status", status).Error
}

func (r *commissionRepository) TotalForSalesmanPeriod(salesmanID uint, start, end time.Time) (money.Money, error) {
	var result struct {
		Total money.Money
	}
	err := r.db.Model(&models.Commission{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("salesman_id = ? AND status <> ? AND created_at BETWEEN ? AND ?",
			salesmanID, string(models.CommissionCancelled), start, end).
		Scan(&result).Error
	if err != nil {
		return money.Zero(), err
	}
	return result.Total, nil
}
