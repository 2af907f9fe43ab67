package handlers

import (
	"errors"
	"fmt"
	"log"

	"whisperbox/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusForError maps an application error to an HTTP status code.
func statusForError(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindState:
		return fiber.StatusBadRequest
	case apperrors.KindAuth:
		return fiber.StatusUnauthorized
	case apperrors.KindForbidden:
		return fiber.StatusForbidden
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindConflict:
		return fiber.StatusConflict
	case apperrors.KindRateLimited:
		return fiber.StatusTooManyRequests
	case apperrors.KindUpstream:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// safeMessage extracts the client-facing message. Unclassified errors never
// leak internal detail across the boundary.
func safeMessage(err error) string {
	var ae *apperrors.Error
	if errors.As(err, &ae) && ae.Kind != apperrors.KindInternal {
		return ae.Message
	}
	return "Something went wrong, please try again later"
}

// respondError writes the stable {message} error shape. Internal detail stays
// in the server log.
func respondError(c *fiber.Ctx, err error) error {
	log.Printf("Request failed: %v", err)

	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": safeMessage(err),
	})
}

// respondValidationError writes the field-level error map.
func respondValidationError(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
