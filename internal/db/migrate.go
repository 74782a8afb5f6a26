package db

import (
	"errors"

	"github.com/ikkim/teashop-backend/config"
	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/ikkim/teashop-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.Review{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap admin account and a starter catalog when the tables are empty.
func Seed(cfg *config.SeedConfig) error {
	return seedInitialData(DB, cfg)
}

func seedInitialData(database *gorm.DB, cfg *config.SeedConfig) error {
	logger.Info("Seeding initial data...")

	if err := seedAdmin(database, cfg); err != nil {
		logger.Error("Failed to seed admin user", err)
		return err
	}

	if err := seedProducts(database); err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedAdmin(database *gorm.DB, cfg *config.SeedConfig) error {
	if cfg == nil || cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		logger.Debug("Admin seed credentials not configured, skipping")
		return nil
	}

	var existing model.User
	err := database.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		logger.Info("Admin user already present, skipping...", map[string]interface{}{
			"username": cfg.AdminUsername,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		FullName:     "Store Administrator",
		Role:         model.RoleAdmin,
	}
	if err := database.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Admin user seeded", map[string]interface{}{
		"user_id":  admin.ID,
		"username": admin.Username,
	})
	return nil
}

func seedProducts(database *gorm.DB) error {
	var count int64
	if err := database.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := []model.Product{
		{
			Name:          "Assam Gold CTC",
			Description:   "Strong malty breakfast tea from upper Assam estates",
			Price:         decimal.RequireFromString("240.00"),
			StockQuantity: 120,
			Category:      "Black Tea",
			Tags:          []string{"assam", "ctc", "breakfast"},
		},
		{
			Name:          "Darjeeling First Flush",
			Description:   "Light muscatel leaf tea, spring harvest",
			Price:         decimal.RequireFromString("650.00"),
			StockQuantity: 40,
			Category:      "Black Tea",
			Tags:          []string{"darjeeling", "leaf"},
		},
		{
			Name:          "Nilgiri Green",
			Description:   "Hand rolled green tea from the Blue Mountains",
			Price:         decimal.RequireFromString("380.00"),
			StockQuantity: 60,
			Category:      "Green Tea",
			Tags:          []string{"nilgiri", "green"},
		},
		{
			Name:          "Masala Chai Blend",
			Description:   "Assam CTC with cardamom, ginger, clove and cinnamon",
			Price:         decimal.RequireFromString("299.00"),
			StockQuantity: 200,
			Category:      "Blends",
			Tags:          []string{"masala", "spiced"},
		},
	}

	if err := database.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Products seeded", map[string]interface{}{
		"count": len(products),
	})
	return nil
}
