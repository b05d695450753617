package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Auth  *AuthHandler
	User  *UserHandler
	Album *AlbumHandler
	Image *ImageHandler
}

// RegisterRoutes mounts the public routes, then everything else behind
// authMiddleware.
func RegisterRoutes(app *fiber.App, h *Handlers, authMiddleware fiber.Handler) {
	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("Album Service is healthy")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	h.Auth.RegisterRoutes(app)

	protected := app.Group("", authMiddleware)
	h.User.RegisterRoutes(protected)
	h.Album.RegisterRoutes(protected)
	h.Image.RegisterRoutes(protected)
}
