// Package ucenter serves the self service API of the identity service:
// login, registration, password and contact changes, the caller's profile
// and the permission lookup client applications authenticate tokens with.
package ucenter

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/web/handler"
	authmiddleware "github.com/oneid-io/oneid/internal/web/middleware/auth"
	"github.com/oneid-io/oneid/internal/web/session"
)

const (
	// Path is the prefix of the self service routes.
	Path = "/siteapi/v1/ucenter"

	// TokenAuthPath is where client applications check a token and, optionally, a permission.
	TokenAuthPath = "/siteapi/v1/auth/token"
)

// Service is the ucenter handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the ucenter handler.
var Handler = Service{}

// Init initializes the ucenter handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || !deps.Valid() {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps
	requireToken := authmiddleware.New(deps.DB)

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.Login)
		router.Post("/login/external", s.ExternalLogin)
		router.Post("/login/ldap", s.DirectoryLogin)
		router.Post("/register", s.Register)
		router.Put("/password", s.Password)

		router.Post("/logout", requireToken, s.Logout)
		router.Patch("/contact", requireToken, s.Contact)
		router.Patch("/mobile", requireToken, s.Mobile)
		router.Get("/profile", requireToken, s.Profile)
		router.Patch("/profile", requireToken, s.UpdateProfile)
		router.Get("/perm", requireToken, s.Perm)
	})

	app.Get(TokenAuthPath, requireToken, auth.RequireQueryPermission(deps.Auth, "perm_uid"), s.TokenPermAuth)

	return nil
}

// issueToken stores a new session for u and renders the login response.
func (s *Service) issueToken(c *fiber.Ctx, u *models.User, status int) error {
	info, err := s.userInfo(c.UserContext(), u)
	if err != nil {
		return err
	}

	token, err := session.GenerateToken()
	if err != nil {
		return err
	}

	sessData := &session.Data{UserID: u.ID, Username: u.Username}
	if err = sessData.Write(token, s.deps.Cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to write session")
		return err
	}

	log.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("token issued")

	return c.Status(status).JSON(LoginResponse{Token: token, UserInfo: info})
}

func (s *Service) userInfo(ctx context.Context, u *models.User) (UserInfo, error) {
	res, err := s.deps.Auth.Resolve(ctx, u)
	if err != nil {
		return UserInfo{}, err
	}

	return newUserInfo(u, res), nil
}

// currentUser returns the authenticated user of the request.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	return auth.UserFromContext(c)
}
