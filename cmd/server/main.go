package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"linkbio-backend/internal/admin"
	"linkbio-backend/internal/analytics"
	"linkbio-backend/internal/auth"
	"linkbio-backend/internal/config"
	"linkbio-backend/internal/content"
	"linkbio-backend/internal/notify"
	"linkbio-backend/internal/setup"
	"linkbio-backend/internal/site"
	"linkbio-backend/internal/storage"
	"linkbio-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s)", cfg.Server.Port, cfg.Database.DSN())

	// 2. Open database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap schema, migrations and seed data
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap database: %v", err)
	}
	log.Println("Database ready")

	// 4. Wire domain services
	repo := content.NewRepository(db)
	svc := analytics.NewService(db)
	images := storage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.MaxFileSize)

	// 5. Start the notification outbox. Mail is the primary channel when SMTP
	// is configured, with Discord as its fallback; otherwise Discord delivers
	// directly. Registering both would notify the owner twice.
	discord := notify.NewDiscordNotifier(repo)
	var outbox *notify.Dispatcher
	if cfg.SMTP.Enabled() {
		outbox = notify.NewDispatcher(notify.NewMailNotifier(cfg.SMTP, repo, discord))
	} else {
		outbox = notify.NewDispatcher(discord)
	}
	defer outbox.Close()

	// 6. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 2,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 7. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 8. Public routes
	siteHandler := site.NewHandler(repo, svc, outbox, cfg.FallbackConfigPath)
	site.RegisterRoutes(app, siteHandler)
	app.Static("/uploads", cfg.Storage.LocalPath)

	// 9. Setup flow
	setupHandler := setup.NewHandler(db, cfg.Setup)
	setup.RegisterRoutes(app, setupHandler)

	// 10. Session routes (registered before the guarded admin group)
	authHandler := auth.NewHandler(&auth.StoreVerifier{Store: db}, cfg.Session)
	app.Post("/api/admin/login", authHandler.Login)
	app.Post("/api/admin/logout", authHandler.Logout)
	app.Get("/api/admin/check-auth", authHandler.CheckAuth)

	// 11. Admin routes (session required)
	adminHandler := admin.NewHandler(repo, svc, images)
	admin.RegisterRoutes(app, adminHandler, cfg.Session.Secret)

	// 12. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *site.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(site.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(site.ErrorResponse{
		Error: &site.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
