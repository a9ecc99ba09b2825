package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autohaven/internal/api"
	"autohaven/internal/app/service"
	"autohaven/internal/app/worker"
	"autohaven/internal/common/security"
	"autohaven/internal/domain/repository"
	"autohaven/internal/platform/config"
	"autohaven/internal/platform/database"
	"autohaven/internal/platform/queue"

	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: Invalid configuration: %v", err)
	}
	log.Println("INFO: Configuration loaded.")

	// 2. Initialize Store
	var repos *repository.Repositories
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		var db *sql.DB
		db, err = database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		defer db.Close()
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		repos = repository.NewPgRepositories(db)
	default:
		log.Println("WARN: Using the in-memory store; data is lost on restart.")
		repos = repository.NewMemoryRepositories()
	}

	// 3. Initialize Redis. Optional with the in-memory store.
	var rdb *redis.Client
	rdb, err = queue.Connect(ctx, queue.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		if cfg.StoreDriver == config.DriverPostgres {
			log.Fatalf("ERROR: %v", err)
		}
		log.Printf("WARN: %v; contact messages will be stored directly.", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// 4. Initialize Services
	engine := security.NewEngine(cfg.JWTKey, cfg.JWTExp, repos.Users)
	authService := service.NewAuthService(repos.Users, engine, security.NewArgon2())
	catalogService := service.NewCatalogService(repos.Listings)
	contactService := service.NewContactService(repos.Contacts, rdb, cfg.ContactQueueName)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("ERROR: Could not ensure admin account: %v", err)
		}
		log.Printf("INFO: Admin account %s ready.", admin.Email)
	}

	// 5. Initialize Contact Worker (as a goroutine)
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()
	workerDone := make(chan struct{})
	if rdb != nil {
		contactWorker := worker.NewContactWorker(rdb, repos.Contacts, cfg.ContactQueueName)
		go func() {
			defer close(workerDone)
			contactWorker.Start(workerCtx)
		}()
		log.Println("INFO: Contact worker started.")
	} else {
		close(workerDone)
	}

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Auth:    authService,
		Catalog: catalogService,
		Contact: contactService,
	}, engine, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("INFO: Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ERROR: Could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("INFO: Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
	<-workerDone

	log.Println("INFO: Server and worker stopped gracefully.")
}
