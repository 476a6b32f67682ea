package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/controller/external"
	"github.com/oneid-io/oneid/internal/db/models"
)

// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
var ErrOIDCDisabled = errors.New("oidc authentication is disabled")

// ProviderOIDC is the provider name external identities of the OIDC login are bound under.
const ProviderOIDC = "oidc"

// CodeExchanger turns the authorization code of an external login provider
// into the subject identifier the provider knows the user by.
type CodeExchanger interface {
	Name() string
	Exchange(ctx context.Context, code string) (string, error)
}

// OIDCConfig holds OpenID Connect (OIDC) configuration for external login.
type OIDCConfig struct {
	// Enabled indicates if OIDC login is enabled.
	Enabled bool
	// ProviderURL is the OIDC provider's discovery URL (e.g., "https://accounts.google.com").
	ProviderURL string
	// ClientID is the OAuth2 client identifier.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// RedirectURL is the OAuth2 callback URL the provider redirected to.
	RedirectURL string
	// Scopes are the OAuth2 scopes to request (default: ["openid"]).
	Scopes []string
}

// OIDCExchanger exchanges OIDC authorization codes and verifies the returned ID token.
type OIDCExchanger struct {
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
}

// NewOIDCExchanger discovers the provider and creates a new exchanger.
func NewOIDCExchanger(ctx context.Context, config *OIDCConfig) (*OIDCExchanger, error) {
	if !config.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, config.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID}
	}

	return &OIDCExchanger{
		verifier: provider.Verifier(&oidc.Config{ClientID: config.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
	}, nil
}

// Name implements CodeExchanger.
func (e *OIDCExchanger) Name() string {
	return ProviderOIDC
}

// Exchange implements CodeExchanger. It returns the sub claim of the ID token.
func (e *OIDCExchanger) Exchange(ctx context.Context, code string) (string, error) {
	token, err := e.oauth2.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", ErrNoIDToken
	}

	idToken, err := e.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify ID token: %w", err)
	}

	return idToken.Subject, nil
}

// AuthenticateExternal logs in the user bound to the external account the code
// belongs to. Codes the provider rejects and unbound accounts are reported on
// the code field.
func AuthenticateExternal(ctx context.Context, db *gorm.DB, ex CodeExchanger, code string) (*models.User, error) {
	if code == "" {
		return nil, apperr.Invalid("code", msgRequired)
	}

	uid, err := ex.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(err, apperr.Invalid("code", msgInvalid))
	}

	u, err := external.Lookup(ctx, db, ex.Name(), uid)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid("code", ErrExternalUnbound)
	}

	if err != nil {
		return nil, err
	}

	return u, nil
}
