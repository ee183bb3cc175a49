package routes

import (
	"time"

	_ "community-backend/docs"
	"community-backend/internal/auth"
	"community-backend/internal/controllers"
	"community-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
)

type Options struct {
	Verifier    auth.Verifier
	CORSOrigins string
	Timeout     time.Duration
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// NewApp builds the Fiber app with every route mounted.
func NewApp(svc Services, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "community-backend",
		ErrorHandler: controllers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Swagger API document
	app.Get("/docs/*", swagger.HandlerDefault)

	// Health
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	app.Use(middleware.JWTUidOnly(opts.Verifier))

	SetupAuth(app, controllers.NewAuthHandler(svc.Accounts, opts.Timeout))
	SetupRoutesPost(app,
		controllers.NewPostHandler(svc.Posts, svc.Engagement, opts.Timeout),
		controllers.NewEngagementHandler(svc.Engagement, opts.Timeout),
	)
	NotificationRoutes(app, controllers.NewNotificationHandler(svc.Notifications, opts.Timeout))

	return app
}
