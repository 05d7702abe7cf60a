package app

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"finance-console/internal/audit"
	"finance-console/internal/category"
	"finance-console/internal/httpx"
	"finance-console/internal/logging"
)

// errorMappings are the domain sentinels the handlers let bubble up.
var errorMappings = []httpx.Mapping{
	{Err: category.ErrUnknown, Status: fiber.StatusNotFound},
	{Err: audit.ErrNotFound, Status: fiber.StatusNotFound},
	{Err: category.ErrExists, Status: fiber.StatusConflict},
	{Err: audit.ErrNothingToRetry, Status: fiber.StatusConflict},
	{Err: category.ErrNotConfirmed, Status: fiber.StatusBadRequest},
}

// NewApp builds the fiber application with every console route mounted.
func NewApp(c *Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "finance-console",
		Immutable:    true,
		ErrorHandler: httpx.ErrorHandler(c.Log, errorMappings...),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(c.Config.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(logging.Middleware(c.Log))

	Routes(app, c)
	return app
}
