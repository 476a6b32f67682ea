// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "ONEID_CONFIG_JSON"

const invalidErrMessage = "invalid config"

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "oneid")
	v.SetDefault("db.gormEngine", EngineMySQL)
	v.SetDefault("db.port", 3306)
	v.SetDefault("webserver.port", 8080)
	v.SetDefault("webserver.shutDownTime", 5)
	v.SetDefault("webserver.session.expiryTime", "24h")
	v.SetDefault("auth.claimToken.issuer", "oneid")
	v.SetDefault("auth.claimToken.ttl", "10m")
	v.SetDefault("log.logLevel", "info")
	v.SetDefault("log.appName", "oneid")
	v.SetDefault("log.serviceName", "oneid")
	v.SetDefault("log.sql.level", "warn")
	v.SetDefault("auth.ldap.port", 389)
	v.SetDefault("auth.ldap.userFilter", "(uid={username})")
	v.SetDefault("seed.adminUsername", "admin")
}

// ReadConfig from <path>main.toml. Environment variables prefixed ONEID_
// override single keys, ONEID_CONFIG_JSON overrides whole sections.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path + "main.toml")
	v.SetEnvPrefix("ONEID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	if env := os.Getenv(EnvConfigJSON); env != "" {
		var err error
		if c, err = decodeAndMergeConfig(c, env); err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	enc := toml.NewEncoder(&buffer)
	enc.SetIndentTables(true)

	if err := enc.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint:wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the daemon cannot start without and fills
// the remaining defaults.
func validate(c *Config) error {
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Auth.ClaimToken.Secret == "" {
		return errors.Wrap(ErrEmptyClaimSecret, invalidErrMessage)
	}

	if c.Auth.LDAP.Enabled && c.Auth.LDAP.Host == "" {
		return errors.Wrap(ErrEmptyLDAPHost, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5
	}

	return nil
}
