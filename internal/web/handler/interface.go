package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/config"
)

// Deps bundles what route handlers need.
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Auth   *auth.Service
	Local  *auth.LocalProvider
	Claims auth.ClaimVerifier
	// External is nil when no external login provider is configured.
	External auth.CodeExchanger
	// LDAP is nil when directory login is disabled.
	LDAP *auth.LDAPProvider
}

// Valid reports whether the mandatory dependencies are set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.DB != nil && d.Auth != nil && d.Local != nil && d.Claims != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}
