package handlers

import (
	"log/slog"
	"net/http"

	"tarification-service/internal/models"
	"tarification-service/internal/services"
	"tarification-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type TariffHandler struct {
	gridService *services.TariffGridService
}

func NewTariffHandler(gridService *services.TariffGridService) *TariffHandler {
	return &TariffHandler{
		gridService: gridService,
	}
}

func (th *TariffHandler) Register(app *fiber.App) {
	group := app.Group("tarif/api/v1/tariffs")
	group.Get("/", th.GetSnapshot)
	group.Post("/reload", th.Reload)

	rcGroup := group.Group("/rc")
	rcGroup.Post("/", th.CreateRCRow)
	rcGroup.Get("/:id", th.GetRCRow)
	rcGroup.Put("/:id", th.UpdateRCRow)
	rcGroup.Delete("/:id", th.DeleteRCRow)

	group.Put("/injury", th.ReplaceInjuryGrid)
	group.Put("/collision", th.ReplaceCollisionGrid)
	group.Put("/fixed", th.ReplaceFixedGrid)
}

func (th *TariffHandler) GetSnapshot(c fiber.Ctx) error {
	snapshot, err := th.gridService.Snapshot()
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(snapshot))
}

func (th *TariffHandler) Reload(c fiber.Ctx) error {
	snapshot, err := th.gridService.Reload()
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("RELOAD_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(snapshot))
}

func (th *TariffHandler) CreateRCRow(c fiber.Ctx) error {
	var req models.CreateRCTariffRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	row, err := th.gridService.CreateRCRow(req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("CREATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(row))
}

func (th *TariffHandler) GetRCRow(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	row, err := th.gridService.GetRCRow(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(row))
}

func (th *TariffHandler) UpdateRCRow(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	var req models.UpdateRCTariffRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	row, err := th.gridService.UpdateRCRow(id, req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("UPDATE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(row))
}

func (th *TariffHandler) DeleteRCRow(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	if err := th.gridService.DeleteRCRow(id); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("DELETE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "RC tariff row deleted successfully",
	}))
}

func (th *TariffHandler) ReplaceInjuryGrid(c fiber.Ctx) error {
	var req models.ReplaceInjuryGridRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := th.gridService.ReplaceInjuryGrid(req); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("REPLACE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "Injury tariff grid replaced successfully",
	}))
}

func (th *TariffHandler) ReplaceCollisionGrid(c fiber.Ctx) error {
	var req models.ReplaceCollisionGridRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := th.gridService.ReplaceCollisionGrid(req); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("REPLACE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "Collision tariff grid replaced successfully",
	}))
}

func (th *TariffHandler) ReplaceFixedGrid(c fiber.Ctx) error {
	var req models.ReplaceFixedGridRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	if err := th.gridService.ReplaceFixedGrid(req); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("REPLACE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "Fixed tariff grid replaced successfully",
	}))
}
