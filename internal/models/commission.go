package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop_manager/internal/money"
)

type CommissionRuleType string

const (
	RuleFlat       CommissionRuleType = "flat"
	RulePercentage CommissionRuleType = "percentage"
	RuleTiered     CommissionRuleType = "tiered"
)

// CommissionRule configures how salesman commission is computed for a shop.
// For flat rules BaseRate is an absolute money amount; for percentage rules it
// is a percentage of the basis; tiered rules ignore BaseRate and use Tiers.
type CommissionRule struct {
	ID       uint             `json:"id" gorm:"primaryKey"`
	ShopID   uint             `json:"shop_id" gorm:"not null;index"`
	Name     string           `json:"name" gorm:"not null"`
	Type     string           `json:"type" gorm:"not null"` // flat, percentage, tiered
	BaseRate decimal.Decimal  `json:"base_rate" gorm:"type:decimal(10,4)"`
	Tiers    []CommissionTier `json:"tiers" gorm:"foreignKey:RuleID"`
	IsActive bool             `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// CommissionTier is one bracket of a tiered rule. Tiers must be contiguous and
// non-overlapping from zero; the last tier leaves MaxAmount null for an open
// upper bound. A sale is rated entirely at the single tier its basis falls
// into (min inclusive, max exclusive), not progressively across brackets.
type CommissionTier struct {
	ID             uint                `json:"id" gorm:"primaryKey"`
	RuleID         uint                `json:"rule_id" gorm:"not null;index"`
	MinAmount      money.Money         `json:"min_amount" gorm:"type:decimal(18,2);not null"`
	MaxAmount      decimal.NullDecimal `json:"max_amount" gorm:"type:decimal(18,2)"`
	RatePercentage decimal.Decimal     `json:"rate_percentage" gorm:"type:decimal(10,4);not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionPaid      CommissionStatus = "paid"
	CommissionCancelled CommissionStatus = "cancelled"
)

// Commission is the payable record created alongside a sale when a rule
// applied. Amount and RatePercentage capture what was actually computed at
// settlement time.
type Commission struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	SaleID         uint            `json:"sale_id" gorm:"not null;index"`
	SalesmanID     uint            `json:"salesman_id" gorm:"not null;index"`
	RuleID         uint            `json:"rule_id" gorm:"not null"`
	BasisAmount    money.Money     `json:"basis_amount" gorm:"type:decimal(18,2);not null"`
	Amount         money.Money     `json:"amount" gorm:"type:decimal(18,2);not null"`
	RatePercentage decimal.Decimal `json:"rate_percentage" gorm:"type:decimal(10,4)"`
	Status         string          `json:"status" gorm:"default:'pending'"` // pending, paid, cancelled

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
