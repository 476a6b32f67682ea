package ucenter

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/db/controller/siteconfig"
	"github.com/oneid-io/oneid/internal/web/handler"
)

// Register handles POST /register and logs the new user in.
func (s *Service) Register(c *fiber.Ctx) error {
	req := new(RegisterRequest)
	if err := handler.Parse(c, req); err != nil {
		return err
	}

	site, err := siteconfig.Load(c.UserContext(), s.deps.DB)
	if err != nil {
		return err
	}

	u, err := s.deps.Local.Register(c.UserContext(), site, auth.Registration{
		Username:   req.Username,
		Password:   req.Password,
		SMSToken:   req.SMSToken,
		EmailToken: req.EmailToken,
	})
	if err != nil {
		return err
	}

	return s.issueToken(c, u, fiber.StatusCreated)
}

// Password handles PUT /password.
func (s *Service) Password(c *fiber.Ctx) error {
	req := new(PasswordRequest)
	if err := handler.Parse(c, req); err != nil {
		return err
	}

	_, err := s.deps.Local.ResetPassword(c.UserContext(), auth.PasswordReset{
		NewPassword: req.NewPassword,
		Mobile:      req.Mobile,
		SMSToken:    req.SMSToken,
		Email:       req.Email,
		EmailToken:  req.EmailToken,
		Username:    req.Username,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{})
}

// Contact handles PATCH /contact.
func (s *Service) Contact(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	req := new(ContactRequest)
	if err = handler.Parse(c, req); err != nil {
		return err
	}

	if err = s.deps.Local.UpdateContact(c.UserContext(), u, req.EmailToken, req.SMSToken); err != nil {
		return err
	}

	return c.JSON(ContactResponse{PrivateEmail: u.GetPrivateEmail(), Mobile: u.GetMobile()})
}

// Mobile handles PATCH /mobile.
func (s *Service) Mobile(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	req := new(MobileRequest)
	if err = handler.Parse(c, req); err != nil {
		return err
	}

	mobile, err := s.deps.Local.UpdateMobile(c.UserContext(), u, req.OldMobileSMSToken, req.NewMobileSMSToken)
	if err != nil {
		return err
	}

	return c.JSON(MobileResponse{NewMobile: mobile})
}
