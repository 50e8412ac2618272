package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"property-backoffice/internal/cache"
	"property-backoffice/internal/cleanup"
	"property-backoffice/internal/config"
	"property-backoffice/internal/database"
	"property-backoffice/internal/geocode"
	"property-backoffice/internal/ratelimit"
	"property-backoffice/internal/routes"
	"property-backoffice/internal/scheduler"
	"property-backoffice/internal/search"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/backoffice.yaml"
	}
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}
	appConfig.ApplyEnv()
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	log.Printf("Using %s database", appConfig.Database.Type)
	gormDB, err := database.Open(appConfig.Database, appConfig.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	searchEngine := setupSearch(appConfig.Search.Meilisearch)
	markerCache := setupCache(appConfig.Cache)

	var geocoder *geocode.Service
	if appConfig.Geocoding.Enabled {
		geo := appConfig.Geocoding
		geocoder = geocode.NewService(
			geocode.NewNominatim(geo.BaseURL, geo.UserAgent, geo.GetTimeout()),
			gormDB,
			ratelimit.NewPacer(geo.GetRequestDelay()),
			ratelimit.NewDailyQuota(geo.MaxRequestsPerDay),
		).WithBreaker(geocode.NewCircuitBreaker(geo.BreakerThreshold, geo.GetBreakerReset()))
		log.Printf("Geocoder initialized: %s (delay %v, %d req/day)", geo.BaseURL, geo.GetRequestDelay(), geo.MaxRequestsPerDay)
	} else {
		log.Println("Geocoding is disabled")
	}

	appScheduler := scheduler.NewScheduler(geocoder, appConfig.Geocoding).
		WithCleanup(cleanup.NewService(gormDB.DB()), appConfig.Cleanup)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	if appConfig.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.New(routes.Deps{
		DB:       gormDB,
		Search:   searchEngine,
		Cache:    markerCache,
		Geocoder: geocoder,
		Server:   appConfig.Server,
		Cleanup:  appConfig.Cleanup,
		Logging:  appConfig.Logging,
	})

	srv := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// setupSearch connects to Meilisearch when a host is configured
func setupSearch(cfg config.MeilisearchConfig) search.Engine {
	if cfg.Host == "" {
		log.Println("Meilisearch not configured, search disabled")
		return search.Noop{}
	}

	client := search.NewSearchClient(cfg.Host, cfg.APIKey)
	if err := client.InitIndexes(); err != nil {
		log.Printf("Warning: Failed to initialize search indexes: %v", err)
	}
	log.Printf("Meilisearch initialized at %s", cfg.Host)
	return client
}

// setupCache prefers Redis, falls back to an in-process cache, and disables
// caching when the TTL is zero.
func setupCache(cfg config.CacheConfig) cache.Cache {
	if cfg.TTLSeconds <= 0 {
		log.Println("Marker cache disabled")
		return cache.Noop{}
	}
	if cfg.RedisAddr == "" {
		log.Printf("Using in-memory marker cache (ttl %v)", cfg.GetTTL())
		return cache.NewMemory(cfg.GetTTL())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	redisCache, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.GetTTL())
	if err != nil {
		log.Printf("Warning: Redis unavailable at %s (%v), using in-memory marker cache", cfg.RedisAddr, err)
		return cache.NewMemory(cfg.GetTTL())
	}
	log.Printf("Redis marker cache connected at %s", cfg.RedisAddr)
	return redisCache
}
