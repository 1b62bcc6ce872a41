package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/auth"
	"github.com/agrisense/pathotrack/internal/config"
	"github.com/agrisense/pathotrack/internal/database"
	"github.com/agrisense/pathotrack/internal/handler"
	"github.com/agrisense/pathotrack/internal/ingest"
	"github.com/agrisense/pathotrack/internal/queue"
	"github.com/agrisense/pathotrack/internal/repository"
	"github.com/agrisense/pathotrack/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Redis is optional: without it the response cache is disabled and the
	// login limiter falls back to its in-process implementation.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, continuing degraded")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	routes := repository.NewRouteRepo(db)
	species := repository.NewSpeciesRepo(db)
	detections := repository.NewDetectionRepo(db)
	uploads := repository.NewUploadRepo(db)

	authSvc := auth.NewService(users, sessions, cfg.SessionTTL)
	limiter := auth.NewLoginLimiter(config.LoadLoginRateLimitConfig(), rdb)
	pipeline := ingest.NewPipeline(routes, species, detections, uploads)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, authSvc, limiter),
		Routes:  handler.NewRouteHandler(routes, detections, uploads),
		Species: handler.NewSpeciesHandler(species),
		Users:   handler.NewUserHandler(cfg, users, sessions),
		Uploads: handler.NewUploadHandler(pipeline),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, authSvc, h, config.LoadCacheConfig(), rdb)

	// The ingest log consumer only runs when a broker is configured; it
	// reconnects forever once started.
	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("AMQP_URL") != "" {
		go func() {
			if err := queue.StartIngestConsumer(); err != nil {
				log.Printf("ingest-consumer: stopped: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
