package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theleywin/SkillShare/src/config"
	"github.com/theleywin/SkillShare/src/controllers"
	"github.com/theleywin/SkillShare/src/lib"
	"github.com/theleywin/SkillShare/src/logging"
	"github.com/theleywin/SkillShare/src/middleware"
	"github.com/theleywin/SkillShare/src/routes"
	"github.com/theleywin/SkillShare/src/storage"
)

func main() {
	cfg := config.LoadServer()
	logging.SetLevel(cfg.LogLevel)
	log := logging.For("server")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	lib.SetJWTSecret(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, using the development signing key")
	}
	lib.RegisterOAuthProvider(lib.GoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.PublicURL))
	lib.RegisterOAuthProvider(lib.GithubProvider(cfg.GithubClientID, cfg.GithubClientSecret, cfg.PublicURL))

	if err := lib.ConnectDB(cfg.MongoURI, cfg.DatabaseName); err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := lib.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Could not create indexes")
	}
	cancel()

	media, localDir := newMediaStore(cfg)
	controllers.Setup(cfg, media)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(metrics.Handler)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.Register(app)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	if localDir != "" {
		app.Static(storage.MediaPrefix, localDir)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error shutting down server")
		}
	}()

	log.Infof("Server is running on http://localhost:%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lib.DisconnectDB(ctx); err != nil {
		log.WithError(err).Warn("Error disconnecting from database")
	}
}

// newMediaStore prefers S3 when a bucket is configured. The returned directory
// is non-empty when media must be served by this process.
func newMediaStore(cfg config.Server) (storage.MediaStore, string) {
	log := logging.For("server")
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3BaseURL)
		if err == nil {
			return store, ""
		}
		log.WithError(err).Warn("S3 media store unavailable, falling back to local disk")
	}

	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare upload directory")
	}
	return store, store.Dir()
}
