package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Typed failures surfaced by the core services. Handlers map them to HTTP
// statuses with StatusForError; nothing is retried here — retry policy
// belongs to the caller.

// ValidationError covers bad input: negative amounts, unknown tiers,
// self-referral and the like.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError means a referenced user/task/stake/session doesn't exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func notFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// StateConflictError means the operation is invalid in the current state:
// claiming a session before it ends, starting one while another runs,
// withdrawing a settled stake.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

func stateConflict(format string, args ...interface{}) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// StatusForError picks the HTTP status for a service error.
func StatusForError(err error) int {
	var ve *ValidationError
	var nf *NotFoundError
	var sc *StateConflictError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.As(err, &nf):
		return fiber.StatusNotFound
	case errors.As(err, &sc):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes a service error as a JSON response with the mapped status.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusForError(err)).JSON(fiber.Map{"error": err.Error()})
}
