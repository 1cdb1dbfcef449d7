package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/traincamp/traincamp-backend/database"
	"github.com/traincamp/traincamp-backend/restapi"
	"github.com/traincamp/traincamp-backend/restapi/apperr"
)

// NewFiberApp creates and configures a Fiber app with the REST routes
func NewFiberApp(db database.DBConnection) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "traincamp-backend API v1.0",
		BodyLimit:    5 * 1024 * 1024, // photo uploads
		ReadTimeout:  60 * time.Second,
		ErrorHandler: apperr.Handler,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(helmet.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     database.GetEnvDefault("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		AllowMethods:     "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 10 * time.Minute,
	}))

	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Uploaded photos
	app.Static("/uploads", database.GetEnvDefault("FILE_UPLOAD_PATH", "./public/uploads"))

	restapi.SetupRoutes(app, db)

	return app
}
