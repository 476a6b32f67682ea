package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	fiberlogger "github.com/oneid-io/oneid/internal/logger/adapter/fiber"
	"github.com/oneid-io/oneid/internal/web/handler"
	"github.com/oneid-io/oneid/internal/web/session"
)

const bearerPrefix = "Bearer "

// TokenFromRequest extracts the API token from the Authorization header.
// Both "Token <t>" and "Bearer <t>" are accepted.
func TokenFromRequest(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))

	for _, prefix := range []string{handler.HeaderTokenPrefix, bearerPrefix} {
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
	}

	return ""
}

// New returns a Fiber middleware that authenticates the request token.
func New(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return apperr.ErrUnauthenticated
		}

		sessData := new(session.Data)
		if err := sessData.Read(token); err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("failed to read session")
			}

			return fmt.Errorf("token: %w", apperr.ErrUnauthenticated)
		}

		// a killed user loses its tokens
		u, err := user.GetByID(c.UserContext(), db, sessData.UserID)
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("user %d: %w", sessData.UserID, apperr.ErrUnauthenticated)
		}

		if err != nil {
			return err
		}

		c.Locals(auth.LocalUser, u)
		c.Locals(handler.LocalToken, token)
		c.Locals(fiberlogger.LocalUserID, u.ID)

		return c.Next()
	}
}
