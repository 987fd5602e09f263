package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/1062291-rgb/masuma-east-hub/internal/adapter/handler"
	"github.com/1062291-rgb/masuma-east-hub/internal/adapter/storage"
	"github.com/1062291-rgb/masuma-east-hub/internal/config"
	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/core/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	if err := runMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("database migrations completed")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Initialize adapters
	redisAdapter := storage.NewRedisAdapter(rdb)
	mysqlAdapter := storage.NewMySQLAdapter(db)

	if err := seedAdminProfile(ctx, mysqlAdapter, cfg); err != nil {
		log.Fatalf("failed to seed admin profile: %v", err)
	}

	if err := primeStockMirror(ctx, mysqlAdapter, redisAdapter); err != nil {
		log.Fatalf("failed to prime stock mirror: %v", err)
	}

	// Initialize services
	authService := service.NewAuthService(mysqlAdapter)
	catalogService := service.NewCatalogService(mysqlAdapter, redisAdapter)
	customerService := service.NewCustomerService(mysqlAdapter)
	saleService := service.NewSaleService(mysqlAdapter, mysqlAdapter, redisAdapter)
	reportService := service.NewReportService(mysqlAdapter, mysqlAdapter, mysqlAdapter)

	server := handler.NewServer(authService, catalogService, customerService,
		saleService, reportService, mysqlAdapter)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Engine(),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

func runMigrations(db *sql.DB, path string) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", path), "mysql", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// seedAdminProfile creates the bootstrap account on first boot so the
// branch has a cashier context before anyone can log in.
func seedAdminProfile(ctx context.Context, adapter *storage.MySQLAdapter, cfg config.Config) error {
	existing, err := adapter.GetProfileByEmail(ctx, cfg.SeedAdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if os.Getenv("SEED_ADMIN_PASSWORD") == "" {
		log.Println("WARNING: using default admin credentials, set SEED_ADMIN_PASSWORD to override")
	}
	hash, err := service.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	profile := domain.Profile{
		ID:           uuid.NewString(),
		Email:        cfg.SeedAdminEmail,
		FullName:     "Branch Admin",
		Role:         domain.RoleAdmin,
		BranchID:     cfg.SeedBranchID,
		Country:      "Kenya",
		Currency:     "KES",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := adapter.CreateProfile(ctx, profile); err != nil {
		return err
	}
	log.Printf("seeded admin profile %s", cfg.SeedAdminEmail)
	return nil
}

// primeStockMirror pushes every product's stock count into Redis so
// POS availability reads start warm.
func primeStockMirror(ctx context.Context, db *storage.MySQLAdapter, cache *storage.RedisAdapter) error {
	branches, err := db.ListBranches(ctx)
	if err != nil {
		return err
	}
	count := 0
	for _, branch := range branches {
		products, err := db.ListProducts(ctx, branch.ID)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := cache.SetStock(ctx, p.ID, p.StockQuantity); err != nil {
				return err
			}
			count++
		}
	}
	log.Printf("primed stock mirror for %d products", count)
	return nil
}
