package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"aidkit/internal/http/middleware"
	"aidkit/internal/repository"
	"aidkit/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceErrors maps service error kinds onto responses, first match wins.
var serviceErrors = []struct {
	kind   error
	status int
	code   string
}{
	{service.ErrInvalidType, fiber.StatusUnprocessableEntity, "INVALID_TYPE"},
	{service.ErrUnknownField, fiber.StatusUnprocessableEntity, "UNKNOWN_FIELD"},
	{service.ErrInvalidArgument, fiber.StatusBadRequest, "INVALID_ARGUMENT"},
	{service.ErrDuplicateKey, fiber.StatusConflict, "DUPLICATE_KEY"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrExportDisabled, fiber.StatusServiceUnavailable, "EXPORT_DISABLED"},
}

// writeRequestError answers a malformed request with 400.
func writeRequestError(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return writeError(c, fiber.StatusBadRequest, re.code, re.message)
	}
	return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
}

// writeServiceError translates a service error. A FieldError answers with
// its own kind, never a wrapped cause. Client errors carry the error text; anything else becomes a bare 500 and the cause is handed to
// the request logger.
func writeServiceError(c *fiber.Ctx, err error) error {
	kind := err
	var fe *repository.FieldError
	if errors.As(err, &fe) && fe.Kind != nil {
		kind = fe.Kind
	}
	for _, se := range serviceErrors {
		if errors.Is(kind, se.kind) {
			return writeError(c, se.status, se.code, err.Error())
		}
	}
	c.Locals(middleware.ErrorLocalKey, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			c.Locals(middleware.ErrorLocalKey, err)
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
