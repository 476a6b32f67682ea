package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/oneid-io/oneid/internal/apperr"
)

const (
	msgExisted        = "existed"
	fieldNonField     = "non_field_errors"
	msgInternalServer = "internal server error"
)

// Status maps err to an HTTP status code and a JSON body.
func Status(err error) (int, any) {
	var (
		ve *apperr.ValidationError
		ke *apperr.KeyError
		me *apperr.MembershipError
		fe *fiber.Error
	)

	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Fields
	case errors.As(err, &ke):
		return fiber.StatusBadRequest, fiber.Map{ke.Field: []string{msgExisted}}
	case errors.As(err, &me):
		return fiber.StatusBadRequest, fiber.Map{fieldNonField: []string{me.Error()}}
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest, fiber.Map{fieldNonField: []string{err.Error()}}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return fiber.StatusUnauthorized, fiber.Map{"detail": "authentication credentials were not provided"}
	case errors.Is(err, apperr.ErrForbidden):
		return fiber.StatusForbidden, fiber.Map{"detail": "you do not have permission to perform this action"}
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound, fiber.Map{"detail": "not found"}
	case errors.As(err, &fe):
		return fe.Code, fiber.Map{"detail": fe.Message}
	default:
		return fiber.StatusInternalServerError, fiber.Map{"detail": msgInternalServer}
	}
}

// ErrorHandler renders errors returned by handlers as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, body := Status(err)
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(code).JSON(body)
}
