// Package perm provides operations on permissions and the grant/override links
// that attach them to users, groups and depts.
package perm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

const (
	entity            = "perm"
	whereOwnerAndPerm = "owner_id = ? AND perm_id = ?"
	whereOwnerIn      = "owner_id IN ?"
	orderByID         = "id"
)

// Create inserts p. The UID must be unused among active permissions.
func Create(ctx context.Context, db *gorm.DB, p *models.Perm) error {
	return store.Create(ctx, db, p, store.Unique{Entity: entity, Column: "uid", Value: p.UID})
}

// Kill soft deletes p together with every grant or override referencing it.
func Kill(ctx context.Context, db *gorm.DB, p *models.Perm) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.Kill(ctx, tx, p); err != nil {
			return err
		}

		for _, link := range []any{&models.UserPerm{}, &models.GroupPerm{}, &models.DeptPerm{}} {
			if err := tx.Where("perm_id = ?", p.ID).Delete(link).Error; err != nil {
				return fmt.Errorf("failed to kill %T of perm %d: %w", link, p.ID, err)
			}
		}

		return nil
	})
}

// GetByUID returns the active permission with uid.
func GetByUID(ctx context.Context, db *gorm.DB, uid string) (*models.Perm, error) {
	var p models.Perm
	if err := store.First(ctx, db, &p, "uid = ?", uid); err != nil {
		return nil, err
	}

	return &p, nil
}

// All returns every active permission ordered by id.
func All(ctx context.Context, db *gorm.DB) ([]models.Perm, error) {
	var perms []models.Perm
	if err := db.WithContext(ctx).Order(orderByID).Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to list perms: %w", err)
	}

	return perms, nil
}

// ByIDs returns the active permissions among ids ordered by id.
func ByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]models.Perm, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var perms []models.Perm
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order(orderByID).Find(&perms).Error; err != nil {
		return nil, fmt.Errorf("failed to load perms: %w", err)
	}

	return perms, nil
}

// SetUserPerm records an explicit override of the permission for the user.
// An existing active override is updated in place.
func SetUserPerm(ctx context.Context, db *gorm.DB, userID uint64, permID uint, value bool) error {
	return upsert(ctx, db, &models.UserPerm{}, userID, permID, value,
		&models.UserPerm{OwnerID: userID, PermID: permID, Value: value})
}

// SetGroupPerm grants (value true) or withholds the permission for every member of the group.
func SetGroupPerm(ctx context.Context, db *gorm.DB, groupID, permID uint, value bool) error {
	return upsert(ctx, db, &models.GroupPerm{}, groupID, permID, value,
		&models.GroupPerm{OwnerID: groupID, PermID: permID, Value: value})
}

// SetDeptPerm grants (value true) or withholds the permission for every member of the dept.
func SetDeptPerm(ctx context.Context, db *gorm.DB, deptID, permID uint, value bool) error {
	return upsert(ctx, db, &models.DeptPerm{}, deptID, permID, value,
		&models.DeptPerm{OwnerID: deptID, PermID: permID, Value: value})
}

// ClearUserPerm removes the explicit override of the permission for the user.
func ClearUserPerm(ctx context.Context, db *gorm.DB, userID uint64, permID uint) error {
	res := db.WithContext(ctx).Where(whereOwnerAndPerm, userID, permID).Delete(&models.UserPerm{})
	if res.Error != nil {
		return fmt.Errorf("failed to clear user perm: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("user perm: %w", apperr.ErrNotFound)
	}

	return nil
}

// UserOverrides returns the active overrides of the user keyed by permission id.
func UserOverrides(ctx context.Context, db *gorm.DB, userID uint64) (map[uint]bool, error) {
	var rows []models.UserPerm
	if err := db.WithContext(ctx).Where("owner_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load user perms: %w", err)
	}

	out := make(map[uint]bool, len(rows))
	for _, r := range rows {
		out[r.PermID] = r.Value
	}

	return out, nil
}

// GrantedToGroups returns the ids of permissions granted with value true to any of the groups.
func GrantedToGroups(ctx context.Context, db *gorm.DB, groupIDs []uint) ([]uint, error) {
	return granted(ctx, db, &models.GroupPerm{}, groupIDs)
}

// GrantedToDepts returns the ids of permissions granted with value true to any of the depts.
func GrantedToDepts(ctx context.Context, db *gorm.DB, deptIDs []uint) ([]uint, error) {
	return granted(ctx, db, &models.DeptPerm{}, deptIDs)
}

func granted(ctx context.Context, db *gorm.DB, model any, ownerIDs []uint) ([]uint, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	var ids []uint

	err := db.WithContext(ctx).Model(model).
		Where(whereOwnerIn, ownerIDs).
		Where("value = ?", true).
		Distinct("perm_id").
		Pluck("perm_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load granted perms: %w", err)
	}

	return ids, nil
}

func upsert(ctx context.Context, db *gorm.DB, model any, ownerID any, permID uint, value bool, rec any) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Perm
		if err := store.First(ctx, tx, &p, "id = ?", permID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(model).Where(whereOwnerAndPerm, ownerID, permID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up %T: %w", model, err)
		}

		if count > 0 {
			err := tx.Model(model).Where(whereOwnerAndPerm, ownerID, permID).Update("value", value).Error
			if err != nil {
				return fmt.Errorf("failed to update %T: %w", model, err)
			}

			return nil
		}

		if err := tx.Create(rec).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return errors.Join(apperr.ErrDuplicateKey, err)
			}

			return fmt.Errorf("failed to create %T: %w", rec, err)
		}

		return nil
	})
}
