package models

import (
	"time"

	"gorm.io/gorm"
)

type Shop struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Location  string         `json:"location"`
	OwnerID   uint           `json:"owner_id"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PhoneNumber  string         `json:"phone_number"`
	PasswordHash string         `json:"-" gorm:"column:password_hash"`
	Role         string         `json:"role" gorm:"default:'salesman'"` // super_admin, shop_owner, salesman, storekeeper
	ShopID       *uint          `json:"shop_id" gorm:"index"`           // nil for super admins
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	SuperAdmin  UserRole = "super_admin"
	ShopOwner   UserRole = "shop_owner"
	Salesman    UserRole = "salesman"
	Storekeeper UserRole = "storekeeper"
)
