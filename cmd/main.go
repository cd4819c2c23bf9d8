package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"bodegamart/internal/caching"
	"bodegamart/internal/config"
	"bodegamart/internal/jobs/background"
	"bodegamart/internal/repositories"
	"bodegamart/internal/services"
	"bodegamart/pkg/database"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Default()
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.toml"
	}
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = cfg.Database.URL
	}
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = cfg.Redis.Addr
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	if redisPassword == "" {
		redisPassword = cfg.Redis.Password
	}
	redisDB := cfg.Redis.DB
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	productRepo := repositories.NewProductRepo(pool)
	inventoryRepo := repositories.NewInventoryRepo(pool)
	purchasesRepo := repositories.NewPurchasesRepo(pool)
	auditLogsRepo := repositories.NewAuditLogsRepo(pool)

	pricingSvc := services.NewPricingService(productRepo, inventoryRepo, purchasesRepo, auditLogsRepo, cacheSvc, cfg.Pricing.PreviewMaxProducts)

	if rate, err := pricingSvc.GetExchangeRate(ctx); err == nil {
		log.Printf("Current VES/USD exchange rate: %s", rate)
	}

	scheduler, err := background.NewJobScheduler(productRepo, cfg.PromotionSweepInterval())
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown error: %v", err)
		}
	}()

	log.Printf("Bulk pricing engine ready (preview cap: %d products)", cfg.Pricing.PreviewMaxProducts)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")
}
