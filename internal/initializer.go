// Package internal boots the server: configuration, database pool,
// managers, router and graceful shutdown.
package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"blogserver/internal/db"
	"blogserver/internal/managers"
	"blogserver/internal/metrics"
	"blogserver/internal/routing"
	"blogserver/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Init loads the configuration, connects the collaborators and runs the
// HTTP server until a termination signal arrives.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on the environment")
	}

	configureLogging()
	metrics.Init()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, databaseURL())
	if err != nil {
		log.Fatal("Could not create connection pool: ", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal("Could not reach the database: ", err)
	}

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal("Could not migrate the database schema: ", err)
	}

	databaseManager := managers.NewDatabaseManager(pool)

	jwtManager, err := managers.NewJWTManagerFromFile()
	if err != nil {
		log.Fatal("Could not initialize JWT manager: ", err)
	}

	mailManager := managers.NewMailManager()
	workerPool := worker.NewPool(4)

	router := routing.NewRouter(databaseManager, jwtManager, mailManager, workerPool)

	server := &http.Server{
		Addr:              ":8080",
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting server on ", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed: ", err)
	}

	// Drain pending newsletter tasks before the pool closes.
	workerPool.Stop()
	log.Info("Server stopped")
}

func configureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func databaseURL() string {
	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	name := envOrDefault("DB_NAME", "blog")
	user := envOrDefault("DB_USER", "postgres")
	password := os.Getenv("DB_PASSWORD")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}
