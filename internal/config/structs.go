package config

import (
	"time"

	"github.com/oneid-io/oneid/internal/logger"
)

// Session settings of the API tokens.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Title     string
	DB        DB
	Log       logger.Log
	Webserver Webserver
	Auth      Auth
	Resolver  Resolver
	Seed      Seed
}

// Seed configures the data created on an empty database.
type Seed struct {
	AdminUsername string
	AdminPassword string
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int     // listening port for the webserver
	URL          string  // base url for the webserver
	ShutDownTime int     // seconds /checkalive fails before the server stops
	Session      Session // token settings
}

// ClaimToken configures the verifier of SMS and email claim tokens.
type ClaimToken struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// OIDCAuth configures the external code login.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// LDAPAuth configures the directory login.
type LDAPAuth struct {
	Enabled      bool
	Host         string
	Port         int
	UseSSL       bool
	UseTLS       bool
	SkipVerify   bool
	BindDN       string
	BindPassword string
	BaseDN       string
	UserFilter   string // e.g. (uid={username})
	Timeout      int    // seconds
}

// Auth holds the authentication settings.
type Auth struct {
	ClaimToken ClaimToken
	OIDC       OIDCAuth
	LDAP       LDAPAuth
}

// Resolver tunes permission resolution.
type Resolver struct {
	// TransitiveGroups lets members inherit the grants of ancestor groups.
	TransitiveGroups bool
	// StaticRoles assigns extra roles per username.
	StaticRoles map[string][]string
}
