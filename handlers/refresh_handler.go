package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/olamide00/countryfx-backend/services"
	"github.com/olamide00/countryfx-backend/shared"
)

type RefreshHandler struct {
	Service      *services.RefreshService
	ImageService *services.ImageService
}

func NewRefreshHandler(service *services.RefreshService, imageService *services.ImageService) *RefreshHandler {
	return &RefreshHandler{Service: service, ImageService: imageService}
}

// RefreshCountries triggers a full refresh. Upstream failures surface as 503
// naming which upstream failed; storage failures surface as a generic 500
// after the transaction rolled back.
func (h *RefreshHandler) RefreshCountries(c *fiber.Ctx) error {
	result, err := h.Service.Refresh(c.Context())
	if err != nil {
		serviceErr := shared.AsServiceError(err, "refresh_countries")
		serviceErr.LogError()

		if serviceErr.Category == shared.ErrorCategoryUpstream {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "External data source unavailable",
				"details": serviceErr.Message,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(result)
}

// GetSummaryImage serves the last rendered summary image. Before the first
// successful refresh no artifact exists and the endpoint returns 404.
func (h *RefreshHandler) GetSummaryImage(c *fiber.Ctx) error {
	imagePath := h.ImageService.ImagePath()

	if _, err := os.Stat(imagePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Summary image not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.SendFile(imagePath)
}
