// Package server assembles the HTTP application from its parts.
package server

import (
	"context"
	"errors"
	"time"

	"mandi/internal/config"
	"mandi/internal/handlers"
	"mandi/internal/metrics"
	"mandi/internal/middleware"
	"mandi/internal/realtime"
	"mandi/internal/repositories"
	"mandi/internal/services"
	"mandi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the long-lived resources the application runs on. Events may be nil when no
// broker is configured.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Events  services.EventPublisher
	Hub     *realtime.Hub
}

// New wires repositories, services and handlers into a fiber app.
func New(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Hub == nil {
		d.Hub = realtime.NewHub()
	}
	cfg := d.Config

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	profileRepo := repositories.NewGORMProfileRepository(d.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	chatRepo := repositories.NewGORMChatRepository(d.DB)
	alertRepo := repositories.NewGORMPriceAlertRepository(d.DB)

	// --- Services ---
	var events *services.Events
	if d.Events != nil {
		events = services.NewEvents(d.Events, d.Metrics, d.Log)
	}
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL, d.Log)
	profileService := services.NewProfileService(profileRepo, d.Log)
	discoveryService := services.NewDiscoveryService(profileRepo, productRepo, cfg.Discovery, d.Metrics)
	productService := services.NewProductService(productRepo, categoryRepo, profileRepo, alertRepo, events, d.Log)
	orderService := services.NewOrderService(orderRepo, productRepo, profileRepo, events, d.Metrics, d.Log)
	chatService := services.NewChatService(chatRepo, profileRepo, d.Hub, events, d.Metrics, d.Log, cfg.Chat.MaxMessageLength)
	alertService := services.NewPriceAlertService(alertRepo, productRepo, profileRepo)

	// --- Handlers ---
	var limiter *middleware.SenderLimiter
	if cfg.Chat.RatePerSecond > 0 {
		limiter = middleware.NewSenderLimiter(cfg.Chat.RatePerSecond, cfg.Chat.Burst)
	}
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService, limiter)
	protected := []interface{ RegisterRoutes(fiber.Router) }{
		handlers.NewProfileHandler(profileService),
		handlers.NewSupplierHandler(discoveryService),
		handlers.NewProductHandler(productService),
		handlers.NewOrderHandler(orderService),
		chatHandler,
		handlers.NewPriceAlertHandler(alertService),
	}

	app := fiber.New(fiber.Config{
		AppName:      "mandi",
		ErrorHandler: errorHandler,
		ReadTimeout:  30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(middleware.HTTPMetrics(d.Metrics))
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", healthCheck(d))
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	auth := middleware.AuthRequired(authService)

	// The chat endpoints are also served at the root for existing clients.
	app.Get("/chat-rooms", auth, chatHandler.HandleListRooms)
	app.Post("/send-message", auth, middleware.RateLimit(limiter), chatHandler.HandleSendMessage)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", auth)
	for _, h := range protected {
		h.RegisterRoutes(protectedRoutes)
	}
	return app
}

func healthCheck(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status, code := "healthy", fiber.StatusOK
		database := "up"
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status, code, database = "degraded", fiber.StatusServiceUnavailable, "down"
		}
		broker := "disabled"
		if d.Events != nil {
			broker = "connected"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
			"rabbitmq": broker,
		})
	}
}

// errorHandler renders errors that escape handlers, like unknown routes, in the API's
// error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger.FromContext(c).Error("unhandled error", zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
