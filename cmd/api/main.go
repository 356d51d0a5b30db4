package main

import (
	"context"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docassist/internal/config"
	"docassist/internal/database"
	"docassist/internal/database/migration"
	"docassist/internal/events"
	"docassist/internal/extract"
	"docassist/internal/genai"
	handlers "docassist/internal/http/handler"
	"docassist/internal/http/middleware"
	"docassist/internal/memory"
	"docassist/internal/otel"
	"docassist/internal/prompt"
	"docassist/internal/repository/postgres"
	"docassist/internal/service"
	"docassist/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// Tracing degrades to noop when no OTLP endpoint is configured
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown", "error", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Session memory lives in Redis
	sessions, err := memory.NewRedis(cfg.Redis, cfg.Limits.MaxHistoryTurns, cfg.Limits.MaxMemoryItems)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	// Analysis events are optional; without brokers they are dropped
	var producer events.Producer = events.Noop{}
	if cfg.Kafka.Brokers != "" {
		producer = events.NewKafkaProducer(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
	}
	defer producer.Close()

	generator, err := genai.NewClient(cfg.Gemini)
	if err != nil {
		log.Fatalf("failed to initialize generation client: %v", err)
	}

	prompts := &prompt.Builder{
		SystemPrompt: cfg.Gemini.SystemPrompt,
		MaxTextChars: cfg.Limits.MaxContextChars,
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	docSvc := service.NewDocumentService(objStore, docRepo)
	analyzeSvc := service.NewAnalyzeService(extract.New(), objStore, docRepo, generator,
		sessions, producer, prompts, cfg.Limits.MaxUploadBytes)
	chatSvc := service.NewChatService(generator, sessions, prompts)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Limits.MaxUploadBytes) + 1024*1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, analyzeSvc, docSvc, chatSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
