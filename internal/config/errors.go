package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not mysql, postgres or sqlite.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrEmptyClaimSecret error if config auth.claimToken.secret is empty.
	ErrEmptyClaimSecret = errors.New("toml config auth.claimToken.secret can not be empty")

	// ErrEmptyLDAPHost error if ldap login is enabled without a server.
	ErrEmptyLDAPHost = errors.New("toml config auth.ldap.host can not be empty when ldap is enabled")
)
