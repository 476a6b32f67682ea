// Package daemon wires the configuration, the database and the web service
// of the identity service together.
package daemon

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/config"
	"github.com/oneid-io/oneid/internal/db/dsn"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/logger/adapter/gormlogger"
	"github.com/oneid-io/oneid/internal/web"
	"github.com/oneid-io/oneid/internal/web/handler"
	"github.com/oneid-io/oneid/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it was shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// OpenDB opens the database selected by cfg.DB.GormEngine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		return nil, config.ErrUnknownGormEngine
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.New(cfg.Log.SQL, log.Logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates the schema and seeds an empty database.
func Migrate(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return Seed(ctx, cfg, db)
}

// SessionStorage returns the token storage for the configured engine.
// sqlite keeps tokens in memory.
func SessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	default:
		return nil
	}
}

// NewDeps builds the services the handlers depend on.
func NewDeps(ctx context.Context, cfg *config.Config, db *gorm.DB) (*handler.Deps, error) {
	claims := auth.NewJWTClaimVerifier(
		cfg.Auth.ClaimToken.Secret,
		cfg.Auth.ClaimToken.Issuer,
		cfg.Auth.ClaimToken.TTL,
	)

	deps := &handler.Deps{
		Cfg: cfg,
		DB:  db,
		Auth: auth.NewService(db, auth.Options{
			TransitiveGroups: cfg.Resolver.TransitiveGroups,
			StaticRoles:      cfg.Resolver.StaticRoles,
		}),
		Local:  auth.NewLocalProvider(db, claims),
		Claims: claims,
	}

	if cfg.Auth.OIDC.Enabled {
		exchanger, err := auth.NewOIDCExchanger(ctx, &auth.OIDCConfig{
			Enabled:      cfg.Auth.OIDC.Enabled,
			ProviderURL:  cfg.Auth.OIDC.ProviderURL,
			ClientID:     cfg.Auth.OIDC.ClientID,
			ClientSecret: cfg.Auth.OIDC.ClientSecret,
			RedirectURL:  cfg.Auth.OIDC.RedirectURL,
			Scopes:       cfg.Auth.OIDC.Scopes,
		})
		if err != nil {
			return nil, err
		}

		deps.External = exchanger
	}

	if cfg.Auth.LDAP.Enabled {
		provider, err := auth.NewLDAPProvider(auth.LDAPConfig{
			Enabled:      cfg.Auth.LDAP.Enabled,
			Host:         cfg.Auth.LDAP.Host,
			Port:         cfg.Auth.LDAP.Port,
			UseSSL:       cfg.Auth.LDAP.UseSSL,
			UseTLS:       cfg.Auth.LDAP.UseTLS,
			SkipVerify:   cfg.Auth.LDAP.SkipVerify,
			BindDN:       cfg.Auth.LDAP.BindDN,
			BindPassword: cfg.Auth.LDAP.BindPassword,
			BaseDN:       cfg.Auth.LDAP.BaseDN,
			UserFilter:   cfg.Auth.LDAP.UserFilter,
			Timeout:      cfg.Auth.LDAP.Timeout,
		})
		if err != nil {
			return nil, err
		}

		deps.LDAP = provider
	}

	return deps, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(ctx, cfg, db); err != nil {
		return nil, err
	}

	session.Init(SessionStorage(cfg))

	deps, err := NewDeps(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.GormEngine).
		Bool("oidc", deps.External != nil).
		Bool("ldap", deps.LDAP != nil).
		Msg("daemon initialised")

	return &Daemon{
		cfg:        cfg,
		webService: web.New(deps),
	}, nil
}
