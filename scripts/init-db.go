package main

import (
	"fmt"
	"log"

	"shop_manager/internal/config"
	"shop_manager/internal/database"
	"shop_manager/internal/migrations"
	"shop_manager/internal/models"
	"shop_manager/internal/repository"
	"shop_manager/internal/services"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	// Check if super admin already exists
	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		fmt.Println("Super admin user already exists")
		return
	}

	// Create super admin user
	superAdmin := &models.User{
		Username:    "admin",
		Email:       "admin@shopmanager.local",
		PhoneNumber: "255700000001",
		Role:        string(models.SuperAdmin),
		IsActive:    true,
	}
	if err := userService.CreateUser(superAdmin, "admin123"); err != nil {
		log.Printf("Warning: Failed to create super admin user: %v", err)
	} else {
		fmt.Println("Super admin user created successfully")
		fmt.Println("Username: admin")
		fmt.Println("Password: admin123")
	}

	// Create a demo shop owner and salesman attached to the seeded shop
	var shop models.Shop
	if err := db.First(&shop).Error; err != nil {
		log.Printf("Warning: No shop found, skipping staff seed: %v", err)
		fmt.Println("Database initialization completed!")
		return
	}

	owner := &models.User{
		Username:    "owner",
		Email:       "owner@shopmanager.local",
		PhoneNumber: "255700000002",
		Role:        string(models.ShopOwner),
		ShopID:      &shop.ID,
		IsActive:    true,
	}
	if err := userService.CreateUser(owner, "owner123"); err != nil {
		log.Printf("Warning: Failed to create shop owner: %v", err)
	}

	salesman := &models.User{
		Username:    "salesman",
		Email:       "salesman@shopmanager.local",
		PhoneNumber: "255700000003",
		Role:        string(models.Salesman),
		ShopID:      &shop.ID,
		IsActive:    true,
	}
	if err := userService.CreateUser(salesman, "salesman123"); err != nil {
		log.Printf("Warning: Failed to create salesman: %v", err)
	}

	fmt.Println("Database initialization completed successfully!")
}
