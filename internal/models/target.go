package models

import (
	"time"

	"shop_manager/internal/money"
)

// Target is a salesman's period goal. Settlement never writes targets; they
// are a read-only input to the performance projection.
type Target struct {
	ID            uint        `json:"id" gorm:"primaryKey"`
	ShopID        uint        `json:"shop_id" gorm:"not null;index"`
	SalesmanID    uint        `json:"salesman_id" gorm:"not null;index"`
	MonthYear     string      `json:"month_year" gorm:"type:varchar(7);not null"` // YYYY-MM
	RevenueTarget money.Money `json:"revenue_target" gorm:"type:decimal(18,2)"`
	UnitTarget    int         `json:"unit_target"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
