package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cambiacartas-api/internal/cache"
	"cambiacartas-api/internal/config"
	"cambiacartas-api/internal/handler"
	"cambiacartas-api/internal/middleware"
	"cambiacartas-api/internal/model"
	"cambiacartas-api/internal/repository"
	"cambiacartas-api/internal/router"
	"cambiacartas-api/internal/scryfall"
	"cambiacartas-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

// store is the union of repositories a mirror backend provides.
type store interface {
	repository.CardMirrorRepository
	repository.InventoryRepository
	repository.WishlistRepository
	repository.SyncProgressRepository
	handler.StatsProvider
	Close() error
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CambiaCartas API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize the mirror/collection store based on config
	var db store
	switch cfg.MirrorDB.Type {
	case "postgres", "postgresql":
		pgStore, err := repository.NewPostgresStore(cfg.MirrorDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		db = pgStore
		log.Println("PostgreSQL store initialized")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.MirrorDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		db = sqliteStore
		log.Println("SQLite store initialized")
	}
	defer db.Close()

	// Initialize MySQL connection for community profiles (optional)
	var profileRepo repository.ProfileRepository

	mysqlDB, err := sql.Open("mysql", cfg.ProfileDB.DSN())
	if err != nil {
		log.Printf("Warning: MySQL connection failed: %v", err)
	} else {
		mysqlDB.SetMaxOpenConns(10)
		mysqlDB.SetMaxIdleConns(5)
		mysqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := mysqlDB.Ping(); err != nil {
			log.Printf("Warning: MySQL ping failed: %v", err)
			mysqlDB.Close()
			mysqlDB = nil
		} else {
			profileRepo = repository.NewMySQLProfileRepository(mysqlDB)
			log.Println("MySQL profile repository initialized")
		}
	}
	if mysqlDB != nil {
		defer mysqlDB.Close()
	}

	// Initialize Redis client (optional)
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed: %v", err)
			redisClient = nil
		} else {
			log.Println("Redis client initialized")
		}
		cancel()
	}

	// Result cache: Redis when available, in-process otherwise
	var resultCache cache.Cache
	var cachePinger func(ctx context.Context) error
	if redisClient != nil {
		resultCache = cache.NewRedisCache(redisClient, "cambiacartas:cache:")
		cachePinger = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	} else {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		resultCache = memCache
	}

	// External catalog client
	catalogClient := scryfall.NewClient(scryfall.Config{
		BaseURL:      cfg.Scryfall.BaseURL,
		Timeout:      cfg.Scryfall.Timeout,
		MaxRetries:   cfg.Scryfall.MaxRetries,
		MaxPages:     cfg.Scryfall.MaxPages,
		SuggestLimit: cfg.Scryfall.SuggestLimit,
	})

	// Initialize services
	resolver := service.NewCardResolver(db, catalogClient)
	reconciler := service.NewReconciler(db, catalogClient)
	collectionService := service.NewCollectionService(db, db, resolver, resultCache)
	matcherService := service.NewMatcherService(db, db, profileRepo, resolver, resultCache, cfg.Cache.MatchTTL)
	importerService := service.NewImporterService(reconciler, collectionService)

	var sessionService *service.SessionService
	if redisClient != nil {
		sessionService = service.NewSessionService(redisClient, cfg.Session.TTL)
	}

	// Optional write-behind buffer for catalog sync upserts
	var cardBuffer *cache.RedisCardBuffer
	var syncSink cache.FlushFunc
	if redisClient != nil {
		cardBuffer, err = cache.NewRedisCardBuffer(redisClient, cache.RedisCardBufferConfig{
			FlushInterval: cfg.Sync.FlushInterval,
		}, db.BatchUpsertCards)
		if err != nil {
			log.Printf("Warning: Redis card buffer initialization failed: %v", err)
		} else {
			syncSink = func(ctx context.Context, entries []model.CatalogEntry) error {
				for _, entry := range entries {
					if err := cardBuffer.Add(ctx, entry); err != nil {
						return err
					}
				}
				return nil
			}
			log.Println("Redis card buffer initialized")
		}
	}

	var syncService *service.CatalogSyncService
	if cfg.Sync.Enabled {
		syncService = service.NewCatalogSyncService(catalogClient, db, db, syncSink, service.SyncConfig{
			Interval: cfg.Sync.Interval,
		})
		syncService.Start()
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, cachePinger)
	catalogHandler := handler.NewCatalogHandler(reconciler, resolver, catalogClient, db)
	inventoryHandler := handler.NewInventoryHandler(collectionService)
	wishlistHandler := handler.NewWishlistHandler(collectionService)
	matchHandler := handler.NewMatchHandler(matcherService)
	importHandler := handler.NewImportHandler(importerService)
	adminHandler := handler.NewAdminHandler(cfg.App.AdminKey, syncService, db)

	var authHandler *handler.AuthHandler
	var profileHandler *handler.ProfileHandler
	if sessionService != nil && profileRepo != nil {
		authHandler = handler.NewAuthHandler(sessionService, profileRepo)
		profileHandler = handler.NewProfileHandler(profileRepo)
	}

	// Create router
	r := router.New(router.Config{
		HealthHandler:    healthHandler,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		WishlistHandler:  wishlistHandler,
		MatchHandler:     matchHandler,
		ProfileHandler:   profileHandler,
		ImportHandler:    importHandler,
		AdminHandler:     adminHandler,
		SessionRequired:  middleware.RequireSession(sessionService),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if syncService != nil {
		syncService.Stop()
	}

	// Close the card buffer first so pending upserts reach the mirror
	if cardBuffer != nil {
		log.Println("Closing card buffer...")
		cardBuffer.Close()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
