// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/billboard-engine/app/dto"
	businessflow "github.com/amirphl/billboard-engine/business_flow"
	"github.com/amirphl/billboard-engine/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	case "numeric":
		return err.Field() + " must contain only numbers"
	default:
		return err.Field() + " is invalid"
	}
}

// validationDetails flattens validator errors into field messages
func validationDetails(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, getValidationErrorMessage(fe))
	}
	return details
}

func errorResponse(c fiber.Ctx, statusCode int, message, code string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    code,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// flowErrorResponse maps a business flow error to its HTTP status
func flowErrorResponse(c fiber.Ctx, err error, action string) error {
	var be *businessflow.BusinessError
	code := "INTERNAL_ERROR"
	message := action + " failed"
	if errors.As(err, &be) {
		code = be.Code
		message = be.Message
	}

	switch {
	case businessflow.IsUnknownScope(err):
		return errorResponse(c, fiber.StatusNotFound, message, code, nil)
	case businessflow.IsPlaylistNotFound(err):
		return errorResponse(c, fiber.StatusNotFound, message, code, nil)
	case businessflow.IsEmptyCatalog(err):
		return errorResponse(c, fiber.StatusUnprocessableEntity, message, code, nil)
	case businessflow.IsInvalidWindow(err):
		return errorResponse(c, fiber.StatusBadRequest, message, code, nil)
	case businessflow.IsCacheNotAvailable(err):
		log.Printf("%s failed request_id=%s: %v", action, requestID(c), err)
		return errorResponse(c, fiber.StatusServiceUnavailable, message, code, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return errorResponse(c, fiber.StatusGatewayTimeout, "Request timed out", "TIMEOUT", nil)
	}

	log.Printf("%s failed request_id=%s: %v", action, requestID(c), err)
	return errorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

func requestID(c fiber.Ctx) string {
	if id := c.Get("X-Request-ID"); id != "" {
		return id
	}
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// createRequestContext derives the flow context from the request. Callers
// must invoke the returned cancel once the flow returns.
func createRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	return ctx, cancel
}
