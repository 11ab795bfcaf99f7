package handlers

import (
	"github.com/amirphl/billboard-engine/app/dto"
	businessflow "github.com/amirphl/billboard-engine/business_flow"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlaylistAdminHandlerInterface defines operator endpoints for playlists
type PlaylistAdminHandlerInterface interface {
	ExportVehicleTimeline(c fiber.Ctx) error
	ExportTariffTimeline(c fiber.Ctx) error
}

type PlaylistAdminHandler struct {
	playlistFlow businessflow.PlaylistFlow
	validator    *validator.Validate
}

func NewPlaylistAdminHandler(playlistFlow businessflow.PlaylistFlow) PlaylistAdminHandlerInterface {
	return &PlaylistAdminHandler{
		playlistFlow: playlistFlow,
		validator:    validator.New(),
	}
}

// ExportVehicleTimeline downloads the current playlist serving a vehicle as Excel
// @Summary Admin Export Vehicle Playlist
// @Tags Admin Playlists
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param vehicle_id path int true "Vehicle ID"
// @Success 200 {string} string "Excel file"
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/admin/playlists/vehicle/{vehicle_id}/export [get]
func (h *PlaylistAdminHandler) ExportVehicleTimeline(c fiber.Ctx) error {
	var req dto.FetchPlaylistByVehicleRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid vehicle id", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/playlists/vehicle/export", utils.RequestTimeout)
	defer cancel()

	filename, data, err := h.playlistFlow.ExportVehicleTimeline(ctx, req.VehicleID)
	if err != nil {
		return flowErrorResponse(c, err, "Export playlist")
	}
	return sendWorkbook(c, filename, data)
}

// ExportTariffTimeline downloads the current playlist of a tariff as Excel
// @Summary Admin Export Tariff Playlist
// @Tags Admin Playlists
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param tariff path string true "Tariff" Enums(standard, comfort, business, premium)
// @Success 200 {string} string "Excel file"
// @Failure 404 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/admin/playlists/tariff/{tariff}/export [get]
func (h *PlaylistAdminHandler) ExportTariffTimeline(c fiber.Ctx) error {
	var req dto.FetchPlaylistByTariffRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid tariff", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Unknown tariff", "UNKNOWN_SCOPE", validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/playlists/tariff/export", utils.RequestTimeout)
	defer cancel()

	filename, data, err := h.playlistFlow.ExportTariffTimeline(ctx, req.Tariff)
	if err != nil {
		return flowErrorResponse(c, err, "Export playlist")
	}
	return sendWorkbook(c, filename, data)
}

func sendWorkbook(c fiber.Ctx, filename string, data []byte) error {
	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}
