package handlers

import (
	"errors"
	"io"

	"album-service/internal/middleware"
	"album-service/internal/models"
	"album-service/internal/service"
	"album-service/pkg/utils"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// sniffLength is how much of an upload is read to detect its content type
const sniffLength = 512

type ImageHandler struct {
	imageService *service.ImageService
	log          *zap.Logger
}

func NewImageHandler(imageService *service.ImageService, log *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		log:          log,
	}
}

func (h *ImageHandler) RegisterRoutes(router fiber.Router) {
	imageGroup := router.Group("/albums/:albumId/images")
	imageGroup.Post("/", h.UploadImage)
	imageGroup.Get("/", h.ListImages)
	imageGroup.Get("/favorites", h.ListFavorites)
	imageGroup.Get("/search", h.SearchImages)
	imageGroup.Put("/:imageId/favorite", h.SetFavorite)
	imageGroup.Post("/:imageId/comments", h.AddComment)
	imageGroup.Delete("/:imageId", h.DeleteImage)
}

// UploadImage accepts a multipart form with a file field and optional tags,
// person and isFavorite fields. Tags may repeat or be comma separated. Field
// validation is left to the service so that access is checked first.
func (h *ImageHandler) UploadImage(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	input := &service.UploadInput{
		Person:     c.FormValue("person"),
		IsFavorite: c.FormValue("isFavorite"),
	}
	if form, err := c.MultipartForm(); err == nil {
		input.Tags = form.Value["tags"]
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return writeError(c, h.log, err)
		}
		defer file.Close()

		head := make([]byte, sniffLength)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return writeError(c, h.log, err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return writeError(c, h.log, err)
		}

		input.FileName = fileHeader.Filename
		input.Size = fileHeader.Size
		input.ContentType = utils.DetectContentType(fileHeader.Filename, head[:n])
		input.Body = file
	}

	image, err := h.imageService.Upload(c.Context(), c.Params("albumId"), identity, input)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

func (h *ImageHandler) ListImages(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	images, err := h.imageService.ListByAlbum(c.Context(), c.Params("albumId"), identity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(images)
}

func (h *ImageHandler) ListFavorites(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	images, err := h.imageService.ListFavorites(c.Context(), c.Params("albumId"), identity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(images)
}

func (h *ImageHandler) SearchImages(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	images, err := h.imageService.SearchByTags(c.Context(), c.Params("albumId"), identity, c.Query("tags"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(images)
}

func (h *ImageHandler) SetFavorite(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	// an unreadable body leaves the field nil for the service to reject
	var req models.FavoriteRequest
	if err := c.Bind().Body(&req); err != nil {
		req = models.FavoriteRequest{}
	}

	image, err := h.imageService.SetFavorite(c.Context(), c.Params("albumId"), c.Params("imageId"), identity, req.IsFavorite)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Favorite status updated",
		"image":   image,
	})
}

func (h *ImageHandler) AddComment(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	var req models.CommentRequest
	if err := c.Bind().Body(&req); err != nil {
		req = models.CommentRequest{}
	}

	image, err := h.imageService.AddComment(c.Context(), c.Params("albumId"), c.Params("imageId"), identity, req.Comment)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Comment added successfully",
		"image":   image,
	})
}

func (h *ImageHandler) DeleteImage(c fiber.Ctx) error {
	identity, _ := middleware.IdentityFrom(c)

	if err := h.imageService.Delete(c.Context(), c.Params("albumId"), c.Params("imageId"), identity); err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"message": "Image deleted successfully",
	})
}
