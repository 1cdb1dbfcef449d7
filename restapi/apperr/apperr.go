// Package apperr defines the structured errors returned by handlers and the
// single Fiber error handler that converts them into the JSON failure
// envelope.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/traincamp/traincamp-backend/database"
)

var logger = database.InitLogger()

// Error carries an HTTP status and a client-facing message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with an explicit status
func New(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest - malformed input, missing required fields, invalid upload
func BadRequest(format string, args ...interface{}) *Error {
	return New(fiber.StatusBadRequest, format, args...)
}

// Unauthorized - missing/invalid/expired credential, bad login
func Unauthorized(format string, args ...interface{}) *Error {
	return New(fiber.StatusUnauthorized, format, args...)
}

// Forbidden - authenticated but not permitted
func Forbidden(format string, args ...interface{}) *Error {
	return New(fiber.StatusForbidden, format, args...)
}

// NotFound - entity id has no match
func NotFound(format string, args ...interface{}) *Error {
	return New(fiber.StatusNotFound, format, args...)
}

// Internal - unexpected failure (store error, mail transport, file system)
func Internal(format string, args ...interface{}) *Error {
	return New(fiber.StatusInternalServerError, format, args...)
}

// isUniqueViolation reports whether a store error was caused by a unique
// index (ArangoDB error 1210)
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "unique constraint violated")
}

// Handler is the Fiber ErrorHandler. Every failure raised by a handler passes
// through here exactly once and comes out as {success:false, error:...} with
// a status from {400, 401, 403, 404, 500}.
func Handler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Server Error"

	var appErr *Error
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	case isUniqueViolation(err):
		status = fiber.StatusBadRequest
		message = "Duplicate field value entered"
	}

	if status == fiber.StatusInternalServerError {
		logger.Sugar().Errorf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
