package daemon

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/config"
	"github.com/oneid-io/oneid/internal/db/controller/perm"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/models"
)

var (
	// ErrNilConfig is returned when the daemon is created without configuration.
	ErrNilConfig = errors.New("config is nil")

	// ErrEmptyAdminPassword is returned when seeding the admin without a password.
	ErrEmptyAdminPassword = errors.New("seed admin password can not be empty")
)

// Seed creates the built-in permissions and, on a user table that never held
// a row, the admin account with a direct grant of the service permission.
// Killed users count, so killing every account does not bring the seed admin
// back.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	for _, sp := range auth.SeedPerms {
		_, err := perm.GetByUID(ctx, db, sp.UID)
		if err == nil {
			continue
		}

		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if err = perm.Create(ctx, db, &models.Perm{UID: sp.UID, Name: sp.Name, Scope: sp.Scope}); err != nil {
			return err
		}
	}

	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	if cfg.Seed.AdminPassword == "" {
		return ErrEmptyAdminPassword
	}

	admin := &models.User{
		Username: cfg.Seed.AdminUsername,
		IsAdmin:  true,
		Origin:   models.OriginScript,
	}
	if err := user.Create(ctx, db, admin, cfg.Seed.AdminPassword); err != nil {
		return err
	}

	oneid, err := perm.GetByUID(ctx, db, auth.PermSystemOneIDAll)
	if err != nil {
		return err
	}

	if err = perm.SetUserPerm(ctx, db, admin.ID, oneid.ID, true); err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Msg("seeded admin user")

	return nil
}
