package database

import (
	"fmt"

	"auction-house/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	// Core auction models first
	coreModels := []interface{}{
		&models.User{},
		&models.Auction{},
		&models.Bid{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Warnf("migration issue for %T: %v", model, err)
		}
	}

	// Post-settlement workflow models
	workflowModels := []interface{}{
		&models.PendingDelivery{},
		&models.Review{},
	}

	for _, model := range workflowModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Warnf("migration issue for %T: %v", model, err)
		}
	}

	// Reward and progression models
	rewardModels := []interface{}{
		&models.WeeklyLeaderboardEntry{},
		&models.XPAward{},
	}

	for _, model := range rewardModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Warnf("migration issue for %T: %v", model, err)
		}
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
