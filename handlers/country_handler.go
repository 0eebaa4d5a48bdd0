package handlers

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/olamide00/countryfx-backend/models"
	"github.com/olamide00/countryfx-backend/services"
	"github.com/sirupsen/logrus"
)

type CountryHandler struct {
	Service *services.CountryService
}

func NewCountryHandler(service *services.CountryService) *CountryHandler {
	return &CountryHandler{Service: service}
}

// GetCountries returns all records matching the region/currency/sort query
// parameters. The full result set is returned; there is no pagination.
func (h *CountryHandler) GetCountries(c *fiber.Ctx) error {
	sort := c.Query("sort")
	switch sort {
	case "", "gdp_desc", "gdp_asc":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Validation failed",
			"details": fiber.Map{
				"sort": "must be one of gdp_desc, gdp_asc",
			},
		})
	}

	filters := models.ListFilters{
		Region:   c.Query("region"),
		Currency: c.Query("currency"),
		Sort:     sort,
	}

	countries, err := h.Service.ListCountries(c.Context(), filters)
	if err != nil {
		logrus.WithError(err).Error("Failed to list countries")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(countries)
}

func (h *CountryHandler) GetCountryByName(c *fiber.Ctx) error {
	name, err := decodeNameParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Validation failed",
			"details": fiber.Map{
				"name": "must be a valid country name",
			},
		})
	}

	country, err := h.Service.GetCountryByName(c.Context(), name)
	if err != nil {
		logrus.WithError(err).WithField("country_name", name).Error("Failed to get country")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if country == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Country not found",
		})
	}
	return c.JSON(country)
}

func (h *CountryHandler) DeleteCountryByName(c *fiber.Ctx) error {
	name, err := decodeNameParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Validation failed",
			"details": fiber.Map{
				"name": "must be a valid country name",
			},
		})
	}

	deleted, err := h.Service.DeleteCountryByName(c.Context(), name)
	if err != nil {
		logrus.WithError(err).WithField("country_name", name).Error("Failed to delete country")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Country not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Country deleted successfully",
	})
}

// decodeNameParam extracts the :name route parameter, decoding any
// percent-encoding so names with spaces match. Path unescaping keeps a
// literal "+" intact; only query strings treat it as a space.
func decodeNameParam(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil || name == "" {
		return "", fmt.Errorf("invalid country name parameter")
	}
	return name, nil
}
