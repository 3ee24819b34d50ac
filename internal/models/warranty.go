package models

import (
	"time"

	"gorm.io/gorm"

	"shop_manager/internal/money"
)

// Warranty is the standalone filing record used when a warranty is registered
// independently of the POS flow. Filing one always creates exactly one linked
// Sale (quantity 1, the warranty price) in the same transaction.
type Warranty struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	ReferenceNumber string `json:"reference_number" gorm:"unique;not null"`
	ShopID          uint   `json:"shop_id" gorm:"not null;index"`
	SalesmanID      *uint  `json:"salesman_id" gorm:"index"`

	DeviceName string `json:"device_name" gorm:"not null"`
	Color      string `json:"color"`
	Storage    string `json:"storage"`
	IMEI       string `json:"imei" gorm:"index"`

	CustomerName  string `json:"customer_name" gorm:"not null"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`

	Price          money.Money `json:"price" gorm:"type:decimal(18,2);not null"`
	WarrantyPeriod int         `json:"warranty_period" gorm:"not null"` // months

	SaleID *uint `json:"sale_id" gorm:"index"` // the sale created by the filing

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// ExpiryDate is derived from the filing instant using calendar months.
func (w *Warranty) ExpiryDate() time.Time {
	return w.CreatedAt.AddDate(0, w.WarrantyPeriod, 0)
}

// StatusAt computes active/expired relative to now; never persisted.
func (w *Warranty) StatusAt(now time.Time) string {
	if now.Before(w.ExpiryDate()) {
		return WarrantyActive
	}
	return WarrantyExpired
}
