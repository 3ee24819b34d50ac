package migrations

import (
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop_manager/internal/models"
	"shop_manager/internal/money"
	"shop_manager/internal/repository"
)

// RunMigrations creates the schema and seeds default data.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Shop{},
		&models.User{},
		&models.Sale{},
		&models.Warranty{},
		&models.CommissionRule{},
		&models.CommissionTier{},
		&models.Commission{},
		&models.Target{},
	)
	if err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData seeds a demo shop with a tiered commission rule so a fresh
// install can settle sales immediately.
func createDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Shop{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Default data already present")
		return nil
	}

	log.Println("Creating default shop and commission rule...")

	shop := &models.Shop{
		Name:     "Main Branch",
		Location: "City Centre",
		IsActive: true,
	}
	if err := db.Create(shop).Error; err != nil {
		return err
	}

	ruleRepo := repository.NewCommissionRuleRepository(db)
	rule := &models.CommissionRule{
		ShopID:   shop.ID,
		Name:     "Default tiered commission",
		Type:     string(models.RuleTiered),
		IsActive: true,
		Tiers: []models.CommissionTier{
			{
				MinAmount:      money.Zero(),
				MaxAmount:      decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				RatePercentage: decimal.NewFromInt(3),
			},
			{
				MinAmount:      money.New(1000),
				MaxAmount:      decimal.NewNullDecimal(decimal.NewFromInt(5000)),
				RatePercentage: decimal.NewFromInt(5),
			},
			{
				MinAmount:      money.New(5000),
				RatePercentage: decimal.NewFromInt(7),
			},
		},
	}
	if err := ruleRepo.Create(rule); err != nil {
		return err
	}

	log.Println("Default data created successfully!")
	return nil
}
