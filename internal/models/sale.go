package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/money"
)

type Sale struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	ReferenceNumber string `json:"reference_number" gorm:"unique;not null"`
	ShopID          uint   `json:"shop_id" gorm:"not null;index"`
	SalesmanID      *uint  `json:"salesman_id" gorm:"index"` // nullable: manual/walk-in sales are unattributed

	ProductID   *uint  `json:"product_id"` // catalog reference, optional
	ProductName string `json:"product_name" gorm:"not null"`

	CustomerName  string `json:"customer_name" gorm:"not null"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	Quantity     int         `json:"quantity" gorm:"not null"`
	SellingPrice money.Money `json:"selling_price" gorm:"type:decimal(18,2);not null"`
	CostPrice    money.Money `json:"cost_price" gorm:"type:decimal(18,2)"`
	Offers       money.Money `json:"offers" gorm:"type:decimal(18,2)"` // discount applied against profit
	TotalAmount  money.Money `json:"total_amount" gorm:"type:decimal(18,2);not null"`
	Ganji        money.Money `json:"ganji" gorm:"type:decimal(18,2)"` // profit, may be negative

	HasWarranty     bool             `json:"has_warranty" gorm:"default:false"`
	WarrantyMonths  int              `json:"warranty_months"`
	WarrantyStart   *time.Time       `json:"warranty_start"`
	WarrantyEnd     *time.Time       `json:"warranty_end"`
	WarrantyDetails *WarrantyDetails `json:"warranty_details" gorm:"type:jsonb"`
	WarrantyID      *uint            `json:"warranty_id" gorm:"index"` // set when the sale came from a warranty filing

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

const (
	WarrantyActive  = "active"
	WarrantyExpired = "expired"
)

// WarrantyStatusAt derives the warranty status relative to now. Status is never
// stored so it cannot go stale.
func (s *Sale) WarrantyStatusAt(now time.Time) string {
	if !s.HasWarranty || s.WarrantyEnd == nil {
		return ""
	}
	if now.Before(*s.WarrantyEnd) {
		return WarrantyActive
	}
	return WarrantyExpired
}

// WarrantyDetails is the point-in-time snapshot embedded in a sale. It is
// written once at settlement and never recomputed from the catalog, since
// catalog prices change after the fact.
type WarrantyDetails struct {
	Version       int         `json:"version"`
	DeviceName    string      `json:"device_name"`
	Color         string      `json:"color"`
	Storage       string      `json:"storage"`
	IMEI          string      `json:"imei"`
	CustomerEmail string      `json:"customer_email"`
	Price         money.Money `json:"price"`
}

const WarrantyDetailsVersion = 1

func (d WarrantyDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *WarrantyDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported warranty details column type %T", value)
	}
}
