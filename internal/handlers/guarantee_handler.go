package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"tarification-service/internal/models"
	"tarification-service/internal/services"
	"tarification-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type GuaranteeHandler struct {
	guaranteeService *services.GuaranteeService
}

func NewGuaranteeHandler(guaranteeService *services.GuaranteeService) *GuaranteeHandler {
	return &GuaranteeHandler{
		guaranteeService: guaranteeService,
	}
}

func (gh *GuaranteeHandler) Register(app *fiber.App) {
	group := app.Group("tarif/api/v1/guarantees")
	group.Post("/", gh.CreateGuarantee)
	group.Get("/", gh.ListGuarantees)
	group.Get("/category/:category", gh.ListGuaranteesByCategory)
	group.Get("/:id", gh.GetGuarantee)
	group.Put("/:id", gh.UpdateGuarantee)
	group.Delete("/:id", gh.DeleteGuarantee)
	group.Patch("/:id/toggle-active", gh.ToggleActive)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (gh *GuaranteeHandler) CreateGuarantee(c fiber.Ctx) error {
	var req models.CreateGuaranteeRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	guarantee, err := gh.guaranteeService.CreateGuarantee(req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("CREATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(guarantee))
}

func (gh *GuaranteeHandler) GetGuarantee(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	guarantee, err := gh.guaranteeService.GetGuarantee(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(guarantee))
}

func (gh *GuaranteeHandler) ListGuarantees(c fiber.Ctx) error {
	guarantees, err := gh.guaranteeService.ListGuarantees()
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(guarantees))
}

func (gh *GuaranteeHandler) ListGuaranteesByCategory(c fiber.Ctx) error {
	category := models.GuaranteeCategory(c.Params("category"))

	guarantees, err := gh.guaranteeService.ListGuaranteesByCategory(category)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(guarantees))
}

func (gh *GuaranteeHandler) UpdateGuarantee(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	var req models.UpdateGuaranteeRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	guarantee, err := gh.guaranteeService.UpdateGuarantee(id, req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("UPDATE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(guarantee))
}

func (gh *GuaranteeHandler) DeleteGuarantee(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	if err := gh.guaranteeService.DeleteGuarantee(id); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("DELETE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "Guarantee deleted successfully",
	}))
}

func (gh *GuaranteeHandler) ToggleActive(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	guarantee, err := gh.guaranteeService.ToggleActive(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("TOGGLE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(guarantee))
}
