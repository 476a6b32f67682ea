package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/models"
)

const (
	// LocalUser is the fiber.Locals key the token middleware stores the *models.User under.
	LocalUser = "CurrentUser"

	// LocalResolution is the fiber.Locals key the permission middleware stores the *Resolution under.
	LocalResolution = "CurrentResolution"
)

// UserFromContext returns the authenticated user of the request.
func UserFromContext(c *fiber.Ctx) (*models.User, error) {
	u, ok := c.Locals(LocalUser).(*models.User)
	if !ok || u == nil {
		return nil, apperr.ErrUnauthenticated
	}

	return u, nil
}

// ResolutionFromContext returns the resolution stored by a permission
// middleware, resolving the user when no middleware ran.
func ResolutionFromContext(c *fiber.Ctx, authService *Service) (*Resolution, error) {
	if res, ok := c.Locals(LocalResolution).(*Resolution); ok && res != nil {
		return res, nil
	}

	u, err := UserFromContext(c)
	if err != nil {
		return nil, err
	}

	res, err := authService.Resolve(c.UserContext(), u)
	if err != nil {
		return nil, err
	}

	c.Locals(LocalResolution, res)

	return res, nil
}

// RequireQueryPermission creates Fiber middleware that requires the permission
// named by the query parameter key. Requests without the parameter pass
// unchecked. The resolution is stored for the handlers that follow.
func RequireQueryPermission(authService *Service, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := c.Query(key)
		if uid == "" {
			return c.Next()
		}

		u, err := UserFromContext(c)
		if err != nil {
			return err
		}

		res, err := authService.RequirePermission(c.UserContext(), u.ID, uid)
		if err != nil {
			if errors.Is(err, apperr.ErrForbidden) {
				log.Warn().Uint64("user_id", u.ID).Str("permission", uid).
					Msg("user lacks required permission")
			}

			return err
		}

		c.Locals(LocalResolution, res)

		return c.Next()
	}
}
