package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/controller/external"
	"github.com/oneid-io/oneid/internal/db/models"
)

// ProviderLDAP is the provider name directory accounts are bound under. The
// external uid is the entry DN.
const ProviderLDAP = "ldap"

var (
	// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
	ErrLDAPDisabled = errors.New("ldap authentication is disabled")

	// ErrDirectoryUserNotFound is returned when the user filter matches no entry.
	ErrDirectoryUserNotFound = errors.New("user not found in directory")

	// ErrMultipleDirectoryUsers is returned when the user filter matches more than one entry.
	ErrMultipleDirectoryUsers = errors.New("multiple directory entries match the username")
)

// LDAPConfig holds LDAP/Active Directory configuration for directory login.
type LDAPConfig struct {
	// Enabled indicates if LDAP authentication is enabled.
	Enabled bool
	// Host is the LDAP server hostname or IP address.
	Host string
	// Port is the LDAP server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS (LDAP over SSL/TLS).
	UseSSL bool
	// UseTLS enables StartTLS to upgrade an LDAP connection to TLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for performing searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the base distinguished name for user searches.
	BaseDN string
	// UserFilter is the LDAP filter for finding users (e.g., "(uid={username})").
	// The {username} placeholder is replaced with the escaped username.
	UserFilter string
	// Timeout is the connection timeout in seconds.
	Timeout int
}

// LDAPProvider verifies directory credentials and logs in the local user the
// directory entry is bound to.
type LDAPProvider struct {
	config LDAPConfig
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(config LDAPConfig) (*LDAPProvider, error) {
	if !config.Enabled {
		return nil, ErrLDAPDisabled
	}

	if config.UserFilter == "" {
		config.UserFilter = "(uid={username})"
	}

	if config.Timeout == 0 {
		config.Timeout = 10
	}

	return &LDAPProvider{config: config}, nil
}

// URL returns the server URL the provider dials.
func (p *LDAPProvider) URL() string {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))
	if p.config.UseSSL {
		return "ldaps://" + hostPort
	}

	return "ldap://" + hostPort
}

// userFilter fills the configured filter with the escaped username.
func (p *LDAPProvider) userFilter(username string) string {
	return strings.ReplaceAll(p.config.UserFilter, "{username}", ldap.EscapeFilter(username))
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	conn, err := ldap.DialURL(p.URL(), ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if p.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(p.config.Timeout) * time.Second)
	}

	return conn, nil
}

// Verify binds as the directory entry matching username and returns its DN.
func (p *LDAPProvider) Verify(username, password string) (string, error) {
	// an empty password would be an unauthenticated bind
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	conn, err := p.Connect()
	if err != nil {
		return "", err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if err = conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
			return "", fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	searchResult, err := conn.Search(ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		p.config.Timeout,
		false,
		p.userFilter(username),
		[]string{"dn"},
		nil,
	))
	if err != nil {
		return "", fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return "", ErrDirectoryUserNotFound
	case 1:
	default:
		return "", ErrMultipleDirectoryUsers
	}

	userDN := searchResult.Entries[0].DN
	if err = conn.Bind(userDN, password); err != nil {
		return "", errors.Join(ErrInvalidCredentials, err)
	}

	return userDN, nil
}

// Authenticate verifies the directory credentials and returns the local user
// bound to the entry. Every failure is reported on non_field_errors.
func (p *LDAPProvider) Authenticate(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	userDN, err := p.Verify(username, password)
	if err != nil {
		log.Debug().Err(err).Str("username", username).Msg("directory login failed")
		return nil, invalid(fieldNonField, ErrInvalidCredentials)
	}

	u, err := external.Lookup(ctx, db, ProviderLDAP, userDN)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid(fieldNonField, ErrExternalUnbound)
	}

	if err != nil {
		return nil, err
	}

	return u, nil
}
