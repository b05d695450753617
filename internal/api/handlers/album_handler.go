package handlers

import (
	"album-service/internal/middleware"
	"album-service/internal/models"
	"album-service/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type AlbumHandler struct {
	albumService *service.AlbumService
	log          *zap.Logger
}

func NewAlbumHandler(albumService *service.AlbumService, log *zap.Logger) *AlbumHandler {
	return &AlbumHandler{
		albumService: albumService,
		log:          log,
	}
}

func (h *AlbumHandler) RegisterRoutes(router fiber.Router) {
	albumGroup := router.Group("/albums")
	albumGroup.Post("/", h.CreateAlbum)
	albumGroup.Get("/", h.ListAlbums)
	albumGroup.Get("/:albumId", h.GetAlbum)
	albumGroup.Put("/:albumId", h.UpdateAlbum)
	albumGroup.Delete("/:albumId", h.DeleteAlbum)
	albumGroup.Post("/:albumId/share", h.ShareAlbum)
}

func (h *AlbumHandler) CreateAlbum(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	var req models.CreateAlbumRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	album, err := h.albumService.Create(c.Context(), identity, req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Album created successfully",
		"album":   album,
	})
}

func (h *AlbumHandler) ListAlbums(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	albums, err := h.albumService.ListVisible(c.Context(), identity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(albums)
}

func (h *AlbumHandler) GetAlbum(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	album, err := h.albumService.Get(c.Context(), c.Params("albumId"), identity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(album)
}

func (h *AlbumHandler) UpdateAlbum(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	// an unreadable body leaves the field nil for the service to reject
	var req models.UpdateAlbumRequest
	if err := c.Bind().Body(&req); err != nil {
		req = models.UpdateAlbumRequest{}
	}

	album, err := h.albumService.UpdateDescription(c.Context(), c.Params("albumId"), identity, req.Description)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Album updated successfully",
		"album":   album,
	})
}

func (h *AlbumHandler) ShareAlbum(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	var req models.ShareAlbumRequest
	if err := c.Bind().Body(&req); err != nil {
		req = models.ShareAlbumRequest{}
	}

	sharedUsers, err := h.albumService.Share(c.Context(), c.Params("albumId"), identity, req.Email)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Album shared successfully",
		"sharedUsers": sharedUsers,
	})
}

func (h *AlbumHandler) DeleteAlbum(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	if err := h.albumService.Delete(c.Context(), c.Params("albumId"), identity); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Album deleted successfully",
	})
}
