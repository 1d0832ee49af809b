package handlers

import (
	"log/slog"
	"net/http"

	"tarification-service/internal/models"
	"tarification-service/internal/services"
	"tarification-service/internal/utils"

	"github.com/gofiber/fiber/v3"
)

type PricingHandler struct {
	pricingService *services.PricingService
}

func NewPricingHandler(pricingService *services.PricingService) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
	}
}

func (ph *PricingHandler) Register(app *fiber.App) {
	group := app.Group("tarif/api/v1/quotes")
	group.Post("/validate", ph.ValidateRequest)
	group.Post("/calculate", ph.CalculatePrice)
	group.Post("/quick-estimate", ph.QuickEstimate)
}

func (ph *PricingHandler) ValidateRequest(c fiber.Ctx) error {
	var req models.PricingRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	result := ph.pricingService.Validate(req)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

func (ph *PricingHandler) CalculatePrice(c fiber.Ctx) error {
	var req models.PricingRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	result, err := ph.pricingService.CalculatePrice(req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("CALCULATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(result))
}

func (ph *PricingHandler) QuickEstimate(c fiber.Ctx) error {
	var req models.QuickEstimateRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	estimate := ph.pricingService.QuickEstimate(req.BasePrice, req.Selections)

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]float64{
		"estimate": estimate,
	}))
}
