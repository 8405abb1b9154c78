package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/expressionlab/moodmirror/internal/api/docs"
	"github.com/expressionlab/moodmirror/internal/api/handler"
	"github.com/expressionlab/moodmirror/internal/api/middleware"
	"github.com/expressionlab/moodmirror/internal/cleanup"
	swagger "github.com/go-swagno/swagno-fiber/swagger"
)

type Dependencies struct {
	SearchService handler.SearchService
	CleanupWorker *cleanup.Worker
}

type Router struct {
	app                 *fiber.App
	logger              *slog.Logger
	deps                *Dependencies
	rateLimiter         *middleware.RateLimiter
	cancelCleanupWorker context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "MoodMirror API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoint
	healthHandler := handler.NewHealthHandler()
	r.app.Get("/api/health", healthHandler.Health)

	// API v1 group
	v1 := r.app.Group("/api/v1")

	// Only configure search routes if dependencies were provided
	if r.deps != nil {
		// Rate limiting (per client IP) - the endpoint is public
		r.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
		v1.Use(r.rateLimiter.Handler())

		searchHandler := handler.NewSearchHandler(r.deps.SearchService, r.logger)

		v1.Post("/search", searchHandler.Search)
		v1.Get("/sessions/:id", searchHandler.GetSession)

		// Start the session retention sweep
		if r.deps.CleanupWorker != nil {
			ctx, cancel := context.WithCancel(context.Background())
			r.cancelCleanupWorker = cancel
			go r.deps.CleanupWorker.Run(ctx)
		}
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop cleanup worker
	if r.cancelCleanupWorker != nil {
		r.cancelCleanupWorker()
	}

	// Stop rate limiter cleanup goroutine
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.Shutdown()
}
