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

type PackageHandler struct {
	packageService *services.PackageService
}

func NewPackageHandler(packageService *services.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

func (ph *PackageHandler) Register(app *fiber.App) {
	group := app.Group("tarif/api/v1/packages")
	group.Post("/", ph.CreatePackage)
	group.Get("/", ph.ListPackages)
	group.Get("/:id", ph.GetPackage)
	group.Put("/:id", ph.UpdatePackage)
	group.Delete("/:id", ph.DeletePackage)
	group.Patch("/:id/toggle-active", ph.ToggleActive)
}

func (ph *PackageHandler) CreatePackage(c fiber.Ctx) error {
	var req models.CreatePackageRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	pkg, err := ph.packageService.CreatePackage(req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("CREATION_FAILED", err.Error()))
	}

	return c.Status(http.StatusCreated).JSON(utils.CreateSuccessResponse(pkg))
}

func (ph *PackageHandler) GetPackage(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	pkg, err := ph.packageService.GetPackage(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(pkg))
}

func (ph *PackageHandler) ListPackages(c fiber.Ctx) error {
	pkgs, err := ph.packageService.ListPackages()
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("FETCH_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(pkgs))
}

func (ph *PackageHandler) UpdatePackage(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	var req models.UpdatePackageRequest
	if err := c.Bind().Body(&req); err != nil {
		slog.Error("error parsing request", "error", err)
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_REQUEST", "Invalid request body"))
	}

	pkg, err := ph.packageService.UpdatePackage(id, req)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("UPDATE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(pkg))
}

func (ph *PackageHandler) DeletePackage(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	if err := ph.packageService.DeletePackage(id); err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("DELETE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(map[string]string{
		"message": "Package deleted successfully",
	}))
}

func (ph *PackageHandler) ToggleActive(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(utils.CreateErrorResponse("INVALID_ID", "Invalid UUID format"))
	}

	pkg, err := ph.packageService.ToggleActive(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(utils.CreateErrorResponse("TOGGLE_FAILED", err.Error()))
	}

	return c.Status(http.StatusOK).JSON(utils.CreateSuccessResponse(pkg))
}
