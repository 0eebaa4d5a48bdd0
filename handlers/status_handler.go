package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/olamide00/countryfx-backend/services"
	"github.com/sirupsen/logrus"
)

type StatusHandler struct {
	Service *services.CountryService
}

func NewStatusHandler(service *services.CountryService) *StatusHandler {
	return &StatusHandler{Service: service}
}

// GetStatus reports the live record count and the last refresh timestamp
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.Service.GetStatus(c.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to read app status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(status)
}

// Liveness is the root liveness payload
func (h *StatusHandler) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "countryfx-backend",
		"timestamp": time.Now().Unix(),
	})
}
