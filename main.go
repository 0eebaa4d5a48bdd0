package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/olamide00/countryfx-backend/config"
	"github.com/olamide00/countryfx-backend/database"
	"github.com/olamide00/countryfx-backend/handlers"
	"github.com/olamide00/countryfx-backend/services"
	"github.com/olamide00/countryfx-backend/shared"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to database
	db, err := database.ConnectWithConfig(cfg.DatabaseURL, cfg.GetDatabasePoolConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db, "database/schema.sql"); err != nil {
		log.Printf("Migration warning: %v", err)
	}

	// Initialize services
	httpFactory := shared.NewHTTPClientFactory(cfg.GetHTTPTimeout())
	fetchService := services.NewFetchService(cfg.CountriesAPIURL, cfg.ExchangeRatesAPIURL, httpFactory, cfg.GetHTTPTimeout())
	countryService := services.NewCountryService(db)
	imageService := services.NewImageService(cfg.SummaryImagePath)
	refreshService := services.NewRefreshService(db, fetchService, countryService, imageService)

	logrus.WithFields(logrus.Fields{
		"countries_api": cfg.CountriesAPIURL,
		"rates_api":     cfg.ExchangeRatesAPIURL,
		"http_timeout":  cfg.GetHTTPTimeout(),
		"image_path":    cfg.SummaryImagePath,
	}).Info("Country backend services initialized")

	// Initialize handlers
	countryHandler := handlers.NewCountryHandler(countryService)
	refreshHandler := handlers.NewRefreshHandler(refreshService, imageService)
	statusHandler := handlers.NewStatusHandler(countryService)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Routes
	app.Get("/", statusHandler.Liveness)
	app.Get("/status", statusHandler.GetStatus)

	app.Post("/countries/refresh", refreshHandler.RefreshCountries)
	app.Get("/countries/image", refreshHandler.GetSummaryImage)
	app.Get("/countries", countryHandler.GetCountries)
	app.Get("/countries/:name", countryHandler.GetCountryByName)
	app.Delete("/countries/:name", countryHandler.DeleteCountryByName)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
