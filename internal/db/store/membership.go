package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
)

const whereOwnerAndUser = "owner_id = ? AND user_id = ?"

// AddMember inserts link, a model keyed by (owner_id, user_id), unless an
// active link for the same pair exists. owner names the owning entity in errors.
func AddMember(ctx context.Context, db *gorm.DB, link any, owner string, ownerID uint, userID uint64) error {
	dup := &apperr.MembershipError{Owner: owner, OwnerID: ownerID, UserID: userID}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(newModel(link)).Where(whereOwnerAndUser, ownerID, userID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s membership: %w", owner, err)
		}

		if count > 0 {
			return dup
		}

		if err := tx.Create(link).Error; err != nil {
			if IsUniqueViolation(err) {
				return dup
			}

			return fmt.Errorf("failed to add %s member: %w", owner, err)
		}

		return nil
	})
}

// RemoveMember kills the active link of model's table for (ownerID, userID).
func RemoveMember(ctx context.Context, db *gorm.DB, model any, ownerID uint, userID uint64) error {
	res := db.WithContext(ctx).Where(whereOwnerAndUser, ownerID, userID).Delete(newModel(model))
	if res.Error != nil {
		return fmt.Errorf("failed to remove member: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("membership: %w", apperr.ErrNotFound)
	}

	return nil
}

// IsMember reports whether an active link for (ownerID, userID) exists in model's table.
func IsMember(ctx context.Context, db *gorm.DB, model any, ownerID uint, userID uint64) (bool, error) {
	var count int64

	err := db.WithContext(ctx).Model(newModel(model)).Where(whereOwnerAndUser, ownerID, userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return count > 0, nil
}
