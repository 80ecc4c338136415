package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gymgate/internal/config"
	"gymgate/internal/models"
	"gymgate/internal/routes"
)

func main() {
	appConfig := config.Load()

	db, err := setupDatabase(appConfig)
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}

	router := routes.SetupRouter(db, appConfig)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Port),
		Handler: router,
	}

	go func() {
		log.Printf("server listening on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func setupDatabase(config *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(config.DBPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Member{},
		&models.MembershipPackage{},
		&models.CheckInLog{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	if err := createInitialData(db); err != nil {
		return nil, fmt.Errorf("seeding initial data failed: %w", err)
	}

	return db, nil
}

func createInitialData(db *gorm.DB) error {
	var adminCount int64
	if err := db.Model(&models.Admin{}).Count(&adminCount).Error; err != nil {
		return err
	}

	if adminCount == 0 {
		adminEmail := getEnv("ADMIN_EMAIL", "admin@gymgate.local")

		var existing models.Admin
		result := db.Where("email = ?", adminEmail).First(&existing)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			admin := models.Admin{
				Email:    adminEmail,
				Password: getEnv("ADMIN_PASSWORD", "admin123"),
				Name:     getEnv("ADMIN_NAME", "System Administrator"),
				Active:   true,
			}
			if err := db.Create(&admin).Error; err != nil {
				return err
			}
			log.Printf("default admin account created (%s)", adminEmail)
		} else if result.Error != nil {
			return result.Error
		}
	}

	var packageCount int64
	if err := db.Model(&models.MembershipPackage{}).Count(&packageCount).Error; err != nil {
		return err
	}

	if packageCount == 0 {
		packages := []models.MembershipPackage{
			{Title: "Day Pass", Description: "Single day access", Price: 10, DurationDays: 1, IsActive: true, SortOrder: 1},
			{Title: "Monthly", Description: "30 days of access", Price: 49, DurationDays: 30, IsActive: true, SortOrder: 2},
			{Title: "Quarterly", Description: "90 days of access", Price: 129, DurationDays: 90, IsActive: true, SortOrder: 3},
			{Title: "Annual", Description: "365 days of access", Price: 449, DurationDays: 365, IsActive: true, SortOrder: 4},
		}
		for _, pkg := range packages {
			if err := db.Create(&pkg).Error; err != nil {
				return err
			}
		}
		log.Println("default membership packages created")
	}

	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
