package handlers

import (
	"net/url"
	"strings"
	"time"

	"album-service/internal/models"
	"album-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"go.uber.org/zap"
)

const adminLoginLimit = 5

type AuthHandler struct {
	authService *service.AuthService
	frontendURL string
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, frontendURL string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

func (h *AuthHandler) RegisterRoutes(app *fiber.App) {
	loginLimiter := limiter.New(limiter.Config{
		Max:        adminLoginLimit,
		Expiration: time.Minute,
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many login attempts, try again later",
			})
		},
	})
	// route middleware follows the handler and runs ahead of it
	app.Post("/admin/login", h.AdminLogin, loginLimiter)

	authGroup := app.Group("/auth/google")
	authGroup.Get("/", h.GoogleLogin)
	authGroup.Get("/callback", h.GoogleCallback)
}

func (h *AuthHandler) AdminLogin(c fiber.Ctx) error {
	var req models.AdminLoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	token, err := h.authService.IssueAdminToken(req.Secret)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

func (h *AuthHandler) GoogleLogin(c fiber.Ctx) error {
	authURL, err := h.authService.AuthURL(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Redirect().Status(fiber.StatusFound).To(authURL)
}

// GoogleCallback sends the browser back to the frontend with the token, or to
// its failure page.
func (h *AuthHandler) GoogleCallback(c fiber.Ctx) error {
	token, err := h.authService.CompleteOAuth(c.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		h.log.Warn("Google sign-in failed", zap.Error(err))
		return c.Redirect().Status(fiber.StatusFound).To(h.frontendURL + "/auth/failure")
	}

	return c.Redirect().Status(fiber.StatusFound).To(h.frontendURL + "/auth/success?token=" + url.QueryEscape(token))
}
