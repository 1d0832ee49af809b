package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tarification-service/internal/config"
	"tarification-service/internal/database/postgres"
	"tarification-service/internal/database/redis"
	"tarification-service/internal/event"
	"tarification-service/internal/handlers"
	"tarification-service/internal/repository"
	"tarification-service/internal/services"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	logDir := filepath.Join("/tarif", "log", "tarification_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		log.Printf("error connect to database: %s", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		log.Printf("error connect to redis, grid snapshot caching disabled: %s", err)
	} else {
		defer redisClient.Close()
	}

	// Catalog events are best effort: the service runs without a broker.
	var publisher *event.CatalogPublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		log.Printf("error connect to rabbitmq, catalog events disabled: %s", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewCatalogPublisher(rabbitConn)
	}

	guaranteeRepo := repository.NewGuaranteeRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	tariffRepo := repository.NewTariffRepository(db)

	guaranteeService := services.NewGuaranteeService(guaranteeRepo, publisher)
	packageService := services.NewPackageService(packageRepo, publisher)

	var gridCache *goredis.Client
	if redisClient != nil {
		gridCache = redisClient.GetClient()
	}
	gridService := services.NewTariffGridService(tariffRepo, gridCache, publisher)
	pricingService := services.NewPricingService(guaranteeService, packageService, gridService)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Tarification service is healthy")
	})

	handlers.NewGuaranteeHandler(guaranteeService).Register(app)
	handlers.NewPackageHandler(packageService).Register(app)
	handlers.NewTariffHandler(gridService).Register(app)
	handlers.NewPricingHandler(pricingService).Register(app)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")
}
