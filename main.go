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

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/estanteapp/estante/api"
	"github.com/estanteapp/estante/auth"
	"github.com/estanteapp/estante/datastore"
	"github.com/estanteapp/estante/googlebooks"
	rh "github.com/estanteapp/estante/route-handlers"
)

const (
	dbPingTimeout     = 5 * time.Second
	shutdownTimeout   = 15 * time.Second
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 25
	dbConnMaxLifetime = 5 * time.Minute

	devSecretKey = "uma_chave_secreta_padrao_para_desenvolvimento"
)

type config struct {
	Port                 string `env:"PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DB_CONNECTION_STRING"`
	DBHost               string `env:"DB_HOST" envDefault:"localhost"`
	DBUser               string `env:"DB_USER" envDefault:"postgres"`
	DBPassword           string `env:"DB_PASSWORD" envDefault:""`
	DBName               string `env:"DB_NAME" envDefault:"catalogo_livros"`
	SecretKey            string `env:"SECRET_KEY"`
	TokenExpirationHours int    `env:"TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	GoogleBooksAPIURL    string `env:"GOOGLE_BOOKS_API_URL" envDefault:"https://www.googleapis.com/books/v1/volumes"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	db, err := setupDatabase(cfg.connectionString())
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService(cfg.SecretKey, time.Duration(cfg.TokenExpirationHours)*time.Hour)
	hasher := auth.NewPasswordHasher()
	metadata := googlebooks.NewClient(cfg.GoogleBooksAPIURL)

	userRepo := datastore.NewUserRepository(db)
	bookRepo := datastore.NewBookRepository(db)
	categoryRepo := datastore.NewCategoryRepository(db)
	bookCategoryRepo := datastore.NewBookCategoryRepository(db)

	authHandler := rh.NewAuthHandler(userRepo, tokens, hasher)
	bookHandler := rh.NewBookHandler(bookRepo, metadata)
	categoryHandler := rh.NewCategoryHandler(categoryRepo)
	associationHandler := rh.NewAssociationHandler(bookCategoryRepo)

	router := api.SetupRoutes(db, tokens, authHandler, bookHandler, categoryHandler, associationHandler)

	startServer(cfg.Port, router)
}

func loadConfig() (*config, error) {
	// A missing .env file is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not load .env file: %v", err)
	}

	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = devSecretKey
		log.Println("WARNING: SECRET_KEY not set, using the default development key.")
	}
	return cfg, nil
}

// connectionString prefers the full DB_CONNECTION_STRING and falls back
// to the discrete host/user/password/name variables.
func (c *config) connectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName)
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
