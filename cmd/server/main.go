package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/dmfalcao/ledgerflow-backend/internal/adapter/events"
	kafkaevents "github.com/dmfalcao/ledgerflow-backend/internal/adapter/events/kafka"
	"github.com/dmfalcao/ledgerflow-backend/internal/adapter/repository/postgres"
	"github.com/dmfalcao/ledgerflow-backend/internal/adapter/rest"
	"github.com/dmfalcao/ledgerflow-backend/internal/domain"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/account"
	"github.com/dmfalcao/ledgerflow-backend/internal/usecase/ledger"
)

const defaultHTTPPort = "3000"

func main() {
	// Best effort: a missing .env file is fine, env vars still apply
	_ = godotenv.Load()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		user := envOrDefault("DB_USER", "postgres")
		password := envOrDefault("DB_PASSWORD", "postgres")
		dbname := envOrDefault("DB_NAME", "ledgerflow")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	unitOfWork := postgres.NewUnitOfWork(db)

	// 3. Initialize Event Publisher (Kafka, optional)
	var publisher domain.EventPublisher = events.NewNopPublisher()
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		kafkaPublisher := kafkaevents.NewPublisher(strings.Split(brokers, ","))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("Publishing transaction events to %s", brokers)
	}

	// 4. Initialize Services (Use Cases)
	accountService := account.NewAccountService(accountRepo, ledgerRepo)
	ledgerService := ledger.NewLedgerService(unitOfWork, ledgerRepo, publisher)

	// 5. Start HTTP Server
	app := fiber.New()
	rest.NewServer(accountService, ledgerService).RegisterRoutes(app)

	httpPort := envOrDefault("HTTP_PORT", defaultHTTPPort)

	// Start server in a goroutine
	go func() {
		log.Printf("Financial Ledger API running on port %s", httpPort)
		if err := app.Listen(":" + httpPort); err != nil {
			log.Fatalf("Failed to serve HTTP server: %v", err)
		}
	}()

	// Graceful shutdown
	waitForShutdown(app)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(app *fiber.App) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down HTTP server: %v", err)
	}
	log.Println("HTTP server stopped")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
