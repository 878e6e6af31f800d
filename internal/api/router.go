package api

import (
	"errors"
	"time"

	"finease/docs"
	"finease/internal/api/handlers"
	"finease/pkg/auth"
	"finease/pkg/config"
	"finease/pkg/metrics"
	"finease/pkg/middleware"
	"finease/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func SetupRouter(
	txHandler *handlers.TransactionHandler,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	verifier auth.Verifier,
	gateway store.Gateway,
	appMetrics *metrics.Metrics,
	serverCfg *config.ServerConfig,
	verifyTimeout time.Duration,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "FinEase Server",
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			} else {
				appLogger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"message": message,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(appMetrics.Middleware())

	// Public routes
	app.Get("/", healthHandler.Greeting)
	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", appMetrics.Handler())

	// Swagger UI; the docs package registers the OpenAPI document in init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.AuthMiddleware(verifier, verifyTimeout, appMetrics, appLogger)
	requireStore := middleware.RequireStore(gateway, appLogger)

	app.Get("/auth/me", requireAuth, authHandler.Me)

	// Protected routes
	transactions := app.Group("/my-transaction", requireAuth, requireStore)
	transactions.Get("", txHandler.ListTransactions)
	transactions.Get("/:id", txHandler.GetTransaction)
	transactions.Post("", txHandler.CreateTransaction)
	transactions.Put("/:id", txHandler.UpdateTransaction)
	transactions.Delete("/:id", txHandler.DeleteTransaction)

	return app
}
