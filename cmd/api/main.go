package main

import (
	"fmt"
	"os"

	"subtracker/internal/config"
	"subtracker/internal/database"
	"subtracker/internal/logger"
	"subtracker/internal/server"
	"subtracker/internal/validator"
)

// @title           Sub Tracker API
// @version         1.0
// @description     Sub Tracker records a user's bank account and categorised income, expense and transfer transactions.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey AdminKey
// @in header
// @name X-API-Key
// @description Operator key for the shared category list.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Migrate and seed the default categories
	if err := dbManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	validator.Register()

	router := server.NewRouter(server.NewServices(dbManager.DB(), appConfig.BcryptCost), server.Options{
		JWTSecret:   appConfig.JWTSecret,
		AdminAPIKey: appConfig.AdminAPIKey,
		Ping:        dbManager.Ping,
	})

	log.Infof("Starting Sub Tracker server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
