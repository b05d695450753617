package handlers

import (
	"album-service/internal/middleware"
	"album-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userGroup := router.Group("/users")
	userGroup.Get("/", h.ListUsers)
	userGroup.Get("/me", h.GetMe)
}

func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) GetMe(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	user, err := h.userService.Me(c.Context(), identity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(user)
}
