package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/besttroy123/websubiekt-backend/internal/database"
	"github.com/besttroy123/websubiekt-backend/internal/handler"
	"github.com/besttroy123/websubiekt-backend/internal/prestashop"
	"github.com/besttroy123/websubiekt-backend/internal/repository"
	"github.com/besttroy123/websubiekt-backend/internal/scheduler"
	"github.com/besttroy123/websubiekt-backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultUpdateInterval = 300000 * time.Millisecond

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found or error loading it")
	}

	apiURL := os.Getenv("PRESTASHOP_API_URL")
	apiToken := os.Getenv("PRESTASHOP_API_TOKEN")
	if apiURL == "" {
		logger.Fatal("PRESTASHOP_API_URL is required")
	}

	db, err := database.NewConnection(databaseDSN())
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	logger.Info("Connected to PostgreSQL successfully.")

	// Set up dependencies (Client -> Store -> Service -> Handler)
	client := prestashop.NewClient(apiURL, apiToken)
	store := repository.NewReportStore(db, logger)
	if err := store.EnsureSchema(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to ensure reporting schema")
	}

	inventoryService := service.NewInventoryService(client, store, logger)
	salesService := service.NewSalesService(client, store, logger)

	interval := updateInterval(logger)
	sched := scheduler.New(logger)
	if err := sched.Register(scheduler.JobInventory, interval, inventoryService.Sync); err != nil {
		logger.Fatalf("Failed to register inventory job: %v", err)
	}
	if err := sched.Register(scheduler.JobSalesReport, interval, func(ctx context.Context) error {
		_, err := salesService.Sync(ctx, service.SalesQuery{})
		return err
	}); err != nil {
		logger.Fatalf("Failed to register sales report job: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize Handlers
	pingHandler := handler.NewPingHandler()
	inventoryHandler := handler.NewInventoryHandler(inventoryService, sched)
	salesReportHandler := handler.NewSalesReportHandler(salesService, sched)
	settingsHandler := handler.NewSettingsHandler(sched, []string{scheduler.JobInventory, scheduler.JobSalesReport})

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Register API Routes
	pingHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	salesReportHandler.RegisterRoutes(router.Group(""))
	settingsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	logger.Infof("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}

// databaseDSN prefers a full DATABASE_URL and falls back to discrete DB_*
// variables with local defaults.
func databaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}

// updateInterval reads the default poll period (milliseconds) from
// API_UPDATE_INTERVAL.
func updateInterval(logger *logrus.Logger) time.Duration {
	raw := os.Getenv("API_UPDATE_INTERVAL")
	if raw == "" {
		return defaultUpdateInterval
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		logger.WithField("value", raw).Warn("Invalid API_UPDATE_INTERVAL, using default")
		return defaultUpdateInterval
	}
	return time.Duration(ms) * time.Millisecond
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
