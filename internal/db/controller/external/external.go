// Package external binds accounts of external login providers to local users.
package external

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

// Bind links the provider account uid to the user.
func Bind(ctx context.Context, db *gorm.DB, provider, uid string, userID uint64) (*models.ExternalIdentity, error) {
	var u models.User
	if err := store.First(ctx, db, &u, "id = ?", userID); err != nil {
		return nil, err
	}

	ident := &models.ExternalIdentity{Provider: provider, UID: uid, UserID: userID}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(ident).Where("provider = ? AND uid = ?", provider, uid).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s binding: %w", provider, err)
		}

		key := store.Unique{Entity: provider + " account", Column: "uid", Value: uid}
		if count > 0 {
			return store.Translate(gorm.ErrDuplicatedKey, key)
		}

		return store.Translate(tx.Create(ident).Error, key)
	})
	if err != nil {
		return nil, err
	}

	return ident, nil
}

// Unbind kills the binding of the provider account uid.
func Unbind(ctx context.Context, db *gorm.DB, provider, uid string) error {
	var ident models.ExternalIdentity
	if err := store.First(ctx, db, &ident, "provider = ? AND uid = ?", provider, uid); err != nil {
		return err
	}

	return store.Kill(ctx, db, &ident)
}

// Lookup returns the active user bound to the provider account uid.
func Lookup(ctx context.Context, db *gorm.DB, provider, uid string) (*models.User, error) {
	var ident models.ExternalIdentity
	if err := store.First(ctx, db, &ident, "provider = ? AND uid = ?", provider, uid); err != nil {
		return nil, err
	}

	var u models.User
	if err := store.First(ctx, db, &u, "id = ?", ident.UserID); err != nil {
		return nil, err
	}

	return &u, nil
}
