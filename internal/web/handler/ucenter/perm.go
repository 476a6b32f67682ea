package ucenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oneid-io/oneid/internal/auth"
)

// Perm handles GET /perm and returns the caller with its permissions.
func (s *Service) Perm(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	info, err := s.userInfo(c.UserContext(), u)
	if err != nil {
		return err
	}

	return c.JSON(info)
}

// TokenPermAuth handles GET /auth/token. A perm_uid the caller does not hold
// is rejected by the permission middleware before this handler runs.
func (s *Service) TokenPermAuth(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	res, err := auth.ResolutionFromContext(c, s.deps.Auth)
	if err != nil {
		return err
	}

	return c.JSON(newUserInfo(u, res))
}
