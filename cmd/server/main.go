package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carouselcraft.io/carousel-studio/internal/api"
	"carouselcraft.io/carousel-studio/internal/config"
	"carouselcraft.io/carousel-studio/internal/core"
	"carouselcraft.io/carousel-studio/internal/export"
	"carouselcraft.io/carousel-studio/internal/payment"
	"carouselcraft.io/carousel-studio/internal/raster"
	"carouselcraft.io/carousel-studio/internal/storage"
	"carouselcraft.io/carousel-studio/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	seedPriceFlag := flag.Int64("seed-price", 0, "Store the lifetime price in cents and exit")
	flag.Parse()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	var gateway payment.Gateway
	if config.AppConfig.StripeSecretKey != "" {
		stripeGateway, err := payment.NewStripeGateway(config.AppConfig.StripeSecretKey, config.AppConfig.StripeWebhookSecret)
		if err != nil {
			log.Fatalf("STRIPE_SECRET_KEY is set but STRIPE_WEBHOOK_SECRET is not: %v", err)
		}
		gateway = stripeGateway
	} else {
		log.Println("STRIPE_SECRET_KEY not set, checkout and webhooks are disabled")
	}
	subscriptionService := core.NewSubscriptionService(dbStore, gateway, config.AppConfig.AppOrigin, int64(config.AppConfig.LifetimePriceCents))

	if *seedPriceFlag > 0 {
		if err := subscriptionService.SetLifetimePrice(*seedPriceFlag); err != nil {
			log.Fatalf("Failed to store lifetime price: %v", err)
		}
		log.Printf("Lifetime price set to %d cents. Exiting.", *seedPriceFlag)
		os.Exit(0)
	}

	llmService := core.NewLLMService()
	defer llmService.Close()

	storer, err := newContentStorer()
	if err != nil {
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	rasterizer, err := raster.NewRasterizer(raster.NewHTTPImageLoader())
	if err != nil {
		log.Fatalf("Failed to initialize rasterizer: %v", err)
	}

	userService := core.NewUserService(dbStore)
	settingsService := core.NewSettingsService(dbStore)
	carouselService := core.NewCarouselService(
		dbStore,
		core.NewGenerator(llmService),
		settingsService,
		subscriptionService,
		rasterizer,
		export.NewExporter(),
		storer,
	)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(userService, carouselService, settingsService, subscriptionService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation and export both wait on slow work
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}

func newContentStorer() (storage.ContentStorer, error) {
	if config.AppConfig.StorageBackend != "r2" {
		return storage.NewLocalFileStorer(config.AppConfig.StorageDir), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return storage.NewR2Storer(ctx, storage.R2Options{
		Endpoint:        config.AppConfig.R2Endpoint,
		Bucket:          config.AppConfig.R2Bucket,
		PublicBaseURL:   config.AppConfig.R2PublicBaseURL,
		AccessKeyID:     config.AppConfig.AWSAccessKeyID,
		SecretAccessKey: config.AppConfig.AWSSecretKey,
	})
}
