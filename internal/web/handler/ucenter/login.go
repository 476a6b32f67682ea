package ucenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/db/controller/siteconfig"
	"github.com/oneid-io/oneid/internal/web/handler"
	"github.com/oneid-io/oneid/internal/web/session"
)

// Login handles POST /login.
func (s *Service) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := handler.Parse(c, req); err != nil {
		return err
	}

	site, err := siteconfig.Load(c.UserContext(), s.deps.DB)
	if err != nil {
		return err
	}

	u, err := s.deps.Local.Authenticate(c.UserContext(), site, auth.Credentials{
		Username:     req.Username,
		PrivateEmail: req.PrivateEmail,
		Mobile:       req.Mobile,
		Password:     req.Password,
	})
	if err != nil {
		return err
	}

	return s.issueToken(c, u, fiber.StatusOK)
}

// ExternalLogin handles POST /login/external.
func (s *Service) ExternalLogin(c *fiber.Ctx) error {
	if s.deps.External == nil {
		return fiber.ErrNotFound
	}

	req := new(ExternalLoginRequest)
	if err := handler.Parse(c, req); err != nil {
		return err
	}

	u, err := auth.AuthenticateExternal(c.UserContext(), s.deps.DB, s.deps.External, req.Code)
	if err != nil {
		return err
	}

	return s.issueToken(c, u, fiber.StatusOK)
}

// DirectoryLogin handles POST /login/ldap.
func (s *Service) DirectoryLogin(c *fiber.Ctx) error {
	if s.deps.LDAP == nil {
		return fiber.ErrNotFound
	}

	req := new(DirectoryLoginRequest)
	if err := handler.Parse(c, req); err != nil {
		return err
	}

	u, err := s.deps.LDAP.Authenticate(c.UserContext(), s.deps.DB, req.Username, req.Password)
	if err != nil {
		return err
	}

	return s.issueToken(c, u, fiber.StatusOK)
}

// Logout handles POST /logout. The token of the request is revoked.
func (s *Service) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(handler.LocalToken).(string)
	if err := session.Delete(token); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
