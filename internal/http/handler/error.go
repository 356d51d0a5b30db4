package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docassist/internal/http/middleware"
	"docassist/internal/service"
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

// writeError writes a standardized JSON error response without leaking internal errors.
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

// writeServiceError translates service sentinel errors into the
// standardized response. Everything unrecognized collapses into a 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT",
			"unsupported file format, please send a PDF, DOCX, DOC, TXT or MD file")
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			"file exceeds the maximum upload size")
	case errors.Is(err, service.ErrRateLimited):
		return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
			"the analysis service is busy, please try again later")
	case errors.Is(err, service.ErrGenerationFailed):
		return writeError(c, fiber.StatusBadGateway, "GENERATION_FAILED",
			"failed to analyze the submission, please try again")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrUserRequired):
		return writeError(c, fiber.StatusBadRequest, "USER_REQUIRED", "user_id is required")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			// Fiber's BodyLimit rejection reports the same code as the
			// service-level size cap.
			return writeError(c, status, "FILE_TOO_LARGE", "file exceeds the maximum upload size")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
