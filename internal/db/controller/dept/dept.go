// Package dept provides operations on departments and their members.
package dept

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

const (
	entity       = "dept"
	whereOwnerID = "owner_id = ?"
	whereID      = "id = ?"
)

// Create inserts d. The UID must be unused among active depts.
func Create(ctx context.Context, db *gorm.DB, d *models.Dept) error {
	return store.Create(ctx, db, d, store.Unique{Entity: entity, Column: "uid", Value: d.UID})
}

// Kill soft deletes d together with its memberships and permission grants.
func Kill(ctx context.Context, db *gorm.DB, d *models.Dept) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.Kill(ctx, tx, d); err != nil {
			return err
		}

		if err := tx.Where(whereOwnerID, d.ID).Delete(&models.DeptMember{}).Error; err != nil {
			return fmt.Errorf("failed to kill members of dept %d: %w", d.ID, err)
		}

		if err := tx.Where(whereOwnerID, d.ID).Delete(&models.DeptPerm{}).Error; err != nil {
			return fmt.Errorf("failed to kill perms of dept %d: %w", d.ID, err)
		}

		return nil
	})
}

// GetByUID returns the active dept with uid.
func GetByUID(ctx context.Context, db *gorm.DB, uid string) (*models.Dept, error) {
	var d models.Dept
	if err := store.First(ctx, db, &d, "uid = ?", uid); err != nil {
		return nil, err
	}

	return &d, nil
}

// AddMember adds the user to the dept. Both must be active.
func AddMember(ctx context.Context, db *gorm.DB, deptID uint, userID uint64) error {
	var d models.Dept
	if err := store.First(ctx, db, &d, whereID, deptID); err != nil {
		return err
	}

	var u models.User
	if err := store.First(ctx, db, &u, whereID, userID); err != nil {
		return err
	}

	return store.AddMember(ctx, db, &models.DeptMember{OwnerID: deptID, UserID: userID}, entity, deptID, userID)
}

// RemoveMember kills the active membership of the user in the dept.
func RemoveMember(ctx context.Context, db *gorm.DB, deptID uint, userID uint64) error {
	return store.RemoveMember(ctx, db, &models.DeptMember{}, deptID, userID)
}

// IsMember reports whether the user is an active member of the dept.
func IsMember(ctx context.Context, db *gorm.DB, deptID uint, userID uint64) (bool, error) {
	return store.IsMember(ctx, db, &models.DeptMember{}, deptID, userID)
}

// DeptsOf returns the ids of the active depts the user belongs to, ordered by id.
func DeptsOf(ctx context.Context, db *gorm.DB, userID uint64) ([]uint, error) {
	var ids []uint

	err := db.WithContext(ctx).Model(&models.Dept{}).
		Where("id IN (?)", db.Model(&models.DeptMember{}).Select("owner_id").Where("user_id = ?", userID)).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list depts of user %d: %w", userID, err)
	}

	return ids, nil
}
