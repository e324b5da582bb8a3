package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"codefriend-store/internal/client"
	"codefriend-store/internal/config"
	"codefriend-store/internal/metrics"
	"codefriend-store/internal/repository"
	"codefriend-store/internal/server"
	"codefriend-store/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(cfg.DatabaseURL)
	storage := client.NewStorageClient(&cfg.Storage)
	mailer := client.NewMailClient(&cfg.Mail)

	var markers client.ViewMarkerStore
	if cfg.Redis.Addr != "" {
		markers = client.NewRedisViewMarkerStore(&cfg.Redis)
	} else {
		markers = client.NewMemoryViewMarkerStore()
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	licenseRepo := repository.NewLicenseRepository(db)
	downloadRepo := repository.NewDownloadRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)

	if cfg.Environment.Name == "development" {
		if err := productRepo.Seed(context.Background()); err != nil {
			log.Println("seed products:", err)
		}
	}

	orderService := service.NewOrderService(db, storage, productRepo, orderRepo, licenseRepo)
	verifyService := service.NewVerifyService(db, mailer, orderRepo, licenseRepo, auditRepo, userRepo, productRepo)
	entitlementService := service.NewEntitlementService(db, storage, productRepo, orderRepo, downloadRepo)
	telemetryService := service.NewTelemetryService(markers, cfg.Telemetry.ViewCooldown, productRepo, downloadRepo)

	metrics.MustRegister()

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(cfg.Auth.JWTSecret, orderService, verifyService, entitlementService, telemetryService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
