package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pilingqa/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, unsupported_format, malformed_design, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "unavailable", msg)
}

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case domain.IsUnsupportedFormat(err):
		return fiber.StatusUnsupportedMediaType, "unsupported_format"
	case domain.IsMalformed(err):
		return fiber.StatusUnprocessableEntity, "malformed_design"
	case errors.Is(err, domain.ErrNoDesignData):
		return fiber.StatusConflict, "no_design_data"
	case errors.Is(err, domain.ErrUnknownViewMode), errors.Is(err, domain.ErrUnknownPage):
		return fiber.StatusBadRequest, "bad_request"
	default:
		return fiber.StatusInternalServerError, "internal_error"
	}
}

// userMessage is the text shown to dashboard users for err.
func userMessage(err error) string {
	switch {
	case domain.IsUnsupportedFormat(err):
		return "Unsupported design format. Please upload .xml, .dxf, or .lok"
	case domain.IsMalformed(err):
		return "The design file could not be read: " + err.Error()
	case errors.Is(err, domain.ErrNoDesignData):
		return "Load a design file with at least one point first"
	case errors.Is(err, domain.ErrUnknownViewMode):
		return "Unknown view mode"
	case errors.Is(err, domain.ErrUnknownPage):
		return "Page must be home or overview"
	default:
		return "Something went wrong, please try again"
	}
}

// errFrom writes the APIError matching a service error. Unexpected errors
// are logged and reported without detail.
func errFrom(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status == fiber.StatusInternalServerError {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
	return newError(c, status, code, userMessage(err))
}
