package daemon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/config"
	"github.com/oneid-io/oneid/internal/db/controller/perm"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/logger"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		DB:   config.DB{GormEngine: config.EngineSQLite},
		Log:  logger.Log{SQL: logger.SQL{Level: "silent"}},
		Seed: config.Seed{AdminUsername: "admin", AdminPassword: "admin"},
		Auth: config.Auth{ClaimToken: config.ClaimToken{Secret: "secret", Issuer: "oneid"}},
	}
}

func TestMigrateAndSeed(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, cfg, db))
	// seeding twice keeps a single admin and permission set
	require.NoError(t, Migrate(ctx, cfg, db))

	admin, err := user.GetByUsername(ctx, db, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, models.OriginScript, admin.Origin)
	assert.True(t, admin.VerifyPassword("admin"))

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)

	perms, err := perm.All(ctx, db)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, auth.PermSystemOneIDAll, perms[0].UID)
	assert.Equal(t, auth.PermSystemArkMetaServerAll, perms[1].UID)

	overrides, err := perm.UserOverrides(ctx, db, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{perms[0].ID: true}, overrides)

	res, err := auth.NewService(db, auth.Options{}).Resolve(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.PermSystemOneIDAll, auth.PermSystemArkMetaServerAll}, res.Perms)
}

func TestSeedWithoutPassword(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Seed.AdminPassword = ""

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	require.ErrorIs(t, Migrate(context.Background(), cfg, db), ErrEmptyAdminPassword)
}

func TestSeedAfterKillingAllUsers(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()

	db, err := OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, cfg, db))

	admin, err := user.GetByUsername(ctx, db, "admin")
	require.NoError(t, err)
	require.NoError(t, user.Kill(ctx, db, admin))

	cfg.Seed.AdminPassword = ""
	require.NoError(t, Seed(ctx, cfg, db))

	var active, all int64
	require.NoError(t, db.Model(&models.User{}).Count(&active).Error)
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&all).Error)
	assert.Equal(t, int64(0), active)
	assert.Equal(t, int64(1), all)

	_, err = user.GetByUsername(ctx, db, "admin")
	require.Error(t, err)
}

func TestOpenDBUnknownEngine(t *testing.T) {
	_, err := OpenDB(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestNewDeps(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	cfg.Resolver.StaticRoles = map[string][]string{"admin": {"auditor"}}

	assert.Nil(t, SessionStorage(cfg))

	db, err := OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, cfg, db))

	deps, err := NewDeps(ctx, cfg, db)
	require.NoError(t, err)
	assert.True(t, deps.Valid())
	assert.Nil(t, deps.External)
	assert.Nil(t, deps.LDAP)

	res, err := deps.Auth.ResolvePermissions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.RoleAdmin, "auditor"}, res.Roles)

	cfg.Auth.LDAP = config.LDAPAuth{Enabled: true, Host: "ldap.example.com", Port: 389}

	deps, err = NewDeps(ctx, cfg, db)
	require.NoError(t, err)
	require.NotNil(t, deps.LDAP)
	assert.Equal(t, "ldap://ldap.example.com:389", deps.LDAP.URL())
}

func TestNewWithSQLite(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilConfig)

	cfg := sqliteConfig()
	cfg.Title = "oneid"
	cfg.Webserver.Port = 8080

	d, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, d.webService)
	assert.NotNil(t, d.webService.App)
}
