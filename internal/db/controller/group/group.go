// Package group provides operations on groups, their members and the
// manager marks that confer the manager role.
package group

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

const (
	entity         = "group"
	whereOwnerID   = "owner_id = ?"
	whereGroupID   = "group_id = ?"
	orderByID      = "id"
	selectOwnerID  = "owner_id"
	selectUserID   = "user_id"
	whereUserID    = "user_id = ?"
	whereIDInQuery = "id IN (?)"
)

// Create inserts g. The UID must be unused among active groups.
func Create(ctx context.Context, db *gorm.DB, g *models.Group) error {
	return store.Create(ctx, db, g, store.Unique{Entity: entity, Column: "uid", Value: g.UID})
}

// Kill soft deletes g together with its memberships, manager mark and permission grants.
func Kill(ctx context.Context, db *gorm.DB, g *models.Group) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.Kill(ctx, tx, g); err != nil {
			return err
		}

		for _, link := range []any{&models.GroupMember{}, &models.GroupPerm{}} {
			if err := tx.Where(whereOwnerID, g.ID).Delete(link).Error; err != nil {
				return fmt.Errorf("failed to kill %T of group %d: %w", link, g.ID, err)
			}
		}

		if err := tx.Where(whereGroupID, g.ID).Delete(&models.ManagerGroup{}).Error; err != nil {
			return fmt.Errorf("failed to unmark manager group %d: %w", g.ID, err)
		}

		return nil
	})
}

// GetByUID returns the active group with uid.
func GetByUID(ctx context.Context, db *gorm.DB, uid string) (*models.Group, error) {
	var g models.Group
	if err := store.First(ctx, db, &g, "uid = ?", uid); err != nil {
		return nil, err
	}

	return &g, nil
}

// AddMember adds the user to the group. Both must be active.
func AddMember(ctx context.Context, db *gorm.DB, groupID uint, userID uint64) error {
	if err := ensureActive(ctx, db, groupID, userID); err != nil {
		return err
	}

	return store.AddMember(ctx, db, &models.GroupMember{OwnerID: groupID, UserID: userID}, entity, groupID, userID)
}

// RemoveMember kills the active membership of the user in the group.
func RemoveMember(ctx context.Context, db *gorm.DB, groupID uint, userID uint64) error {
	return store.RemoveMember(ctx, db, &models.GroupMember{}, groupID, userID)
}

// IsMember reports whether the user is an active member of the group.
func IsMember(ctx context.Context, db *gorm.DB, groupID uint, userID uint64) (bool, error) {
	return store.IsMember(ctx, db, &models.GroupMember{}, groupID, userID)
}

// Members returns the ids of the active users in the group, ordered by id.
func Members(ctx context.Context, db *gorm.DB, groupID uint) ([]uint64, error) {
	var ids []uint64

	err := db.WithContext(ctx).Model(&models.User{}).
		Where(whereIDInQuery, db.Model(&models.GroupMember{}).Select(selectUserID).Where(whereOwnerID, groupID)).
		Order(orderByID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group %d: %w", groupID, err)
	}

	return ids, nil
}

// GroupsOf returns the ids of the active groups the user is a member of, ordered by id.
func GroupsOf(ctx context.Context, db *gorm.DB, userID uint64) ([]uint, error) {
	var ids []uint

	err := db.WithContext(ctx).Model(&models.Group{}).
		Where(whereIDInQuery, db.Model(&models.GroupMember{}).Select(selectOwnerID).Where(whereUserID, userID)).
		Order(orderByID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of user %d: %w", userID, err)
	}

	return ids, nil
}

// Ancestors returns the active ancestors of the given groups following ParentID,
// excluding the groups themselves. Cycles are tolerated.
func Ancestors(ctx context.Context, db *gorm.DB, groupIDs []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(groupIDs))
	for _, id := range groupIDs {
		seen[id] = true
	}

	var out []uint

	frontier := groupIDs
	for len(frontier) > 0 {
		var parents []uint

		err := db.WithContext(ctx).Model(&models.Group{}).
			Where(whereIDInQuery, frontier).
			Where("parent_id IS NOT NULL").
			Pluck("parent_id", &parents).Error
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent groups: %w", err)
		}

		var active []uint
		if len(parents) > 0 {
			err = db.WithContext(ctx).Model(&models.Group{}).
				Where(whereIDInQuery, parents).
				Order(orderByID).
				Pluck("id", &active).Error
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parent groups: %w", err)
			}
		}

		frontier = nil

		for _, id := range active {
			if seen[id] {
				continue
			}

			seen[id] = true
			out = append(out, id)
			frontier = append(frontier, id)
		}
	}

	return out, nil
}

// MarkManager marks the group as conferring the manager role. Marking twice is a no-op.
func MarkManager(ctx context.Context, db *gorm.DB, groupID uint) error {
	ok, err := IsManagerGroup(ctx, db, groupID)
	if err != nil || ok {
		return err
	}

	var g models.Group
	if err := store.First(ctx, db, &g, "id = ?", groupID); err != nil {
		return err
	}

	mark := &models.ManagerGroup{GroupID: groupID}

	return store.Create(ctx, db, mark, store.Unique{Entity: "manager group", Column: "group_id", Value: groupID})
}

// UnmarkManager removes the manager mark of the group.
func UnmarkManager(ctx context.Context, db *gorm.DB, groupID uint) error {
	res := db.WithContext(ctx).Where(whereGroupID, groupID).Delete(&models.ManagerGroup{})
	if res.Error != nil {
		return fmt.Errorf("failed to unmark manager group %d: %w", groupID, res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("manager group %d: %w", groupID, apperr.ErrNotFound)
	}

	return nil
}

// IsManagerGroup reports whether the group carries an active manager mark.
func IsManagerGroup(ctx context.Context, db *gorm.DB, groupID uint) (bool, error) {
	var count int64

	err := db.WithContext(ctx).Model(&models.ManagerGroup{}).Where(whereGroupID, groupID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check manager group %d: %w", groupID, err)
	}

	return count > 0, nil
}

// InManagerGroup reports whether the user is an active member of any active manager group.
func InManagerGroup(ctx context.Context, db *gorm.DB, userID uint64) (bool, error) {
	var count int64

	err := db.WithContext(ctx).Model(&models.ManagerGroup{}).
		Where("group_id IN (?)", db.Model(&models.GroupMember{}).Select(selectOwnerID).Where(whereUserID, userID)).
		Where("group_id IN (?)", db.Model(&models.Group{}).Select("id")).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check manager membership of user %d: %w", userID, err)
	}

	return count > 0, nil
}

func ensureActive(ctx context.Context, db *gorm.DB, groupID uint, userID uint64) error {
	var g models.Group
	if err := store.First(ctx, db, &g, "id = ?", groupID); err != nil {
		return err
	}

	var u models.User

	return store.First(ctx, db, &u, "id = ?", userID)
}
