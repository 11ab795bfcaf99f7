package handlers

import (
	"github.com/amirphl/billboard-engine/app/dto"
	businessflow "github.com/amirphl/billboard-engine/business_flow"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PlaylistHandlerInterface defines the playback client endpoints
type PlaylistHandlerInterface interface {
	FetchByVehicle(c fiber.Ctx) error
	FetchByTariff(c fiber.Ctx) error
	RegenerateByVehicle(c fiber.Ctx) error
	RegenerateByTariff(c fiber.Ctx) error
}

// PlaylistHandler serves current playlists and triggers regeneration
type PlaylistHandler struct {
	playlistFlow businessflow.PlaylistFlow
	validator    *validator.Validate
}

func NewPlaylistHandler(playlistFlow businessflow.PlaylistFlow) PlaylistHandlerInterface {
	return &PlaylistHandler{
		playlistFlow: playlistFlow,
		validator:    validator.New(),
	}
}

// FetchByVehicle returns the playlist currently serving a vehicle
// @Summary Get vehicle playlist
// @Description Returns the vehicle's own playlist when it has an override, otherwise its tariff playlist. Generates one if none exists.
// @Tags Playlists
// @Produce json
// @Param vehicle_id path int true "Vehicle ID"
// @Success 200 {object} dto.APIResponse{data=dto.PlaylistResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 422 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/playlists/vehicle/{vehicle_id} [get]
func (h *PlaylistHandler) FetchByVehicle(c fiber.Ctx) error {
	var req dto.FetchPlaylistByVehicleRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid vehicle id", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/playlists/vehicle", utils.RequestTimeout)
	defer cancel()

	resp, err := h.playlistFlow.FetchByVehicle(ctx, req.VehicleID)
	if err != nil {
		return flowErrorResponse(c, err, "Fetch playlist")
	}
	return successResponse(c, fiber.StatusOK, "Playlist retrieved", resp)
}

// FetchByTariff returns the shared playlist of a tariff
// @Summary Get tariff playlist
// @Tags Playlists
// @Produce json
// @Param tariff path string true "Tariff" Enums(standard, comfort, business, premium)
// @Success 200 {object} dto.APIResponse{data=dto.PlaylistResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 422 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/playlists/tariff/{tariff} [get]
func (h *PlaylistHandler) FetchByTariff(c fiber.Ctx) error {
	var req dto.FetchPlaylistByTariffRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid tariff", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Unknown tariff", "UNKNOWN_SCOPE", validationDetails(err))
	}

	ctx, cancel := createRequestContext(c, "/api/v1/playlists/tariff", utils.RequestTimeout)
	defer cancel()

	resp, err := h.playlistFlow.FetchByTariff(ctx, req.Tariff)
	if err != nil {
		return flowErrorResponse(c, err, "Fetch playlist")
	}
	return successResponse(c, fiber.StatusOK, "Playlist retrieved", resp)
}

// RegenerateByVehicle builds a fresh playlist for the scope serving a vehicle
// @Summary Regenerate vehicle playlist
// @Tags Playlists
// @Produce json
// @Param vehicle_id path int true "Vehicle ID"
// @Param hours query int false "Window length in hours (1-168, default 24)"
// @Success 201 {object} dto.APIResponse{data=dto.PlaylistResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 422 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/playlists/vehicle/{vehicle_id}/regenerate [post]
func (h *PlaylistHandler) RegenerateByVehicle(c fiber.Ctx) error {
	var req dto.FetchPlaylistByVehicleRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid vehicle id", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}
	hours, ok, err := h.bindWindow(c)
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/playlists/vehicle/regenerate", utils.RequestTimeout)
	defer cancel()

	resp, err := h.playlistFlow.RegenerateByVehicle(ctx, req.VehicleID, hours)
	if err != nil {
		return flowErrorResponse(c, err, "Regenerate playlist")
	}
	return successResponse(c, fiber.StatusCreated, "Playlist generated", resp)
}

// RegenerateByTariff builds a fresh shared playlist for a tariff
// @Summary Regenerate tariff playlist
// @Tags Playlists
// @Produce json
// @Param tariff path string true "Tariff" Enums(standard, comfort, business, premium)
// @Param hours query int false "Window length in hours (1-168, default 24)"
// @Success 201 {object} dto.APIResponse{data=dto.PlaylistResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 404 {object} dto.APIResponse
// @Failure 422 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/playlists/tariff/{tariff}/regenerate [post]
func (h *PlaylistHandler) RegenerateByTariff(c fiber.Ctx) error {
	var req dto.FetchPlaylistByTariffRequest
	if err := c.Bind().URI(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid tariff", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusNotFound, "Unknown tariff", "UNKNOWN_SCOPE", validationDetails(err))
	}
	hours, ok, err := h.bindWindow(c)
	if !ok {
		return err
	}

	ctx, cancel := createRequestContext(c, "/api/v1/playlists/tariff/regenerate", utils.RequestTimeout)
	defer cancel()

	resp, err := h.playlistFlow.RegenerateByTariff(ctx, req.Tariff, hours)
	if err != nil {
		return flowErrorResponse(c, err, "Regenerate playlist")
	}
	return successResponse(c, fiber.StatusCreated, "Playlist generated", resp)
}

// bindWindow reads the optional hours query parameter. When ok is false the
// error response has been written and err is the result of writing it.
func (h *PlaylistHandler) bindWindow(c fiber.Ctx) (hours int, ok bool, err error) {
	var req dto.RegeneratePlaylistRequest
	if err := c.Bind().Query(&req); err != nil {
		return 0, false, errorResponse(c, fiber.StatusBadRequest, "Invalid hours", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return 0, false, errorResponse(c, fiber.StatusBadRequest, "Validation failed", "INVALID_WINDOW", validationDetails(err))
	}
	return req.Hours, true, nil
}
