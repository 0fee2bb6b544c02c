package main

import (
	"errors"
	"fmt"

	"tablon/internal/entity"
	"tablon/internal/model"
	"tablon/pkg/config"
	"tablon/pkg/database"
	"tablon/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds the protected admin account and the base categories. Safe to run
// more than once: existing rows are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedDatabase(db, cfg, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, cfg *config.Config, log *logger.Logger) error {
	if err := seedAdmin(db, log); err != nil {
		return err
	}
	return seedCategories(db, log)
}

func seedAdmin(db *gorm.DB, log *logger.Logger) error {
	var existing model.UserModel
	err := db.First(&existing, entity.ProtectedUserID).Error
	if err == nil {
		log.Info("Admin user already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("change-me"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.UserModel{
		ID:           entity.ProtectedUserID,
		Email:        "admin@tablon.local",
		Username:     "admin",
		PasswordHash: string(hashedPassword),
		Role:         "admin",
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info("Created admin user (%s), remember to change its password", admin.Email)
	return nil
}

func seedCategories(db *gorm.DB, log *logger.Logger) error {
	names := []string{
		"General",
		"Academic",
		"Events",
		"Convocatories",
		"Research",
	}

	for _, name := range names {
		var existing model.CategoryModel
		result := db.Where("name = ?", name).First(&existing)
		if result.Error == nil {
			log.Info("Category %s already exists, skipping", name)
			continue
		}
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}

		if err := db.Create(&model.CategoryModel{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to create category %s: %w", name, err)
		}
		log.Info("Created category: %s", name)
	}

	return nil
}
