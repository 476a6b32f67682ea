package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func etcPath(t *testing.T) string {
	t.Helper()

	// project root is two levels up from internal/config
	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "oneid", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
	assert.Equal(t, 24*time.Hour, cfg.Webserver.Session.ExpiryTime)

	assert.Equal(t, EngineMySQL, cfg.DB.GormEngine)
	assert.Equal(t, "127.0.0.1", cfg.DB.Host)
	assert.Equal(t, 3306, cfg.DB.Port)

	assert.Equal(t, "oneid", cfg.Auth.ClaimToken.Issuer)
	assert.Equal(t, 10*time.Minute, cfg.Auth.ClaimToken.TTL)
	assert.False(t, cfg.Auth.OIDC.Enabled)
	assert.False(t, cfg.Auth.LDAP.Enabled)
	assert.Equal(t, "(uid={username})", cfg.Auth.LDAP.UserFilter)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Equal(t, "changeme", cfg.Seed.AdminPassword)

	assert.False(t, cfg.Resolver.TransitiveGroups)
	assert.Equal(t, []string{"auditor"}, cfg.Resolver.StaticRoles["admin"])

	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.Equal(t, "access.log", cfg.Log.File.Access.Name)
	assert.Equal(t, 200*time.Millisecond, cfg.Log.SQL.SlowThreshold)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:        DB{GormEngine: EngineSQLite},
			Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			Auth:      Auth{ClaimToken: ClaimToken{Secret: "secret"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "missing URL",
			mutate:  func(c *Config) { c.Webserver.URL = "" },
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.DB.GormEngine = "oracle" },
			wantErr: ErrUnknownGormEngine,
		},
		{
			name:    "ldap without host",
			mutate:  func(c *Config) { c.Auth.LDAP.Enabled = true },
			wantErr: ErrEmptyLDAPHost,
		},
		{
			name:    "missing claim secret",
			mutate:  func(c *Config) { c.Auth.ClaimToken.Secret = "" },
			wantErr: ErrEmptyClaimSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := validate(&c)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, 5, c.Webserver.ShutDownTime)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090},"DB":{"GormEngine":"sqlite"}}`)

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, EngineSQLite, cfg.DB.GormEngine)
	// sections merge field by field
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
	assert.Equal(t, "127.0.0.1", cfg.DB.Host)
}

func TestReadConfigWithEnvOverride(t *testing.T) {
	t.Setenv("ONEID_WEBSERVER_PORT", "7070")

	cfg, err := ReadConfig(etcPath(t))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Webserver.Port)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir() + string(filepath.Separator))
	assert.Error(t, err)
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		Resolver: Resolver{StaticRoles: map[string][]string{"admin": {"auditor"}}},
	}

	tomlStr, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.Contains(t, tomlStr, "Title")
	assert.Contains(t, tomlStr, "Test")
	assert.Contains(t, tomlStr, "auditor")

	jsonStr, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonStr, `"Title": "Test"`)
}
