package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// Group is a named collection of users. Groups may nest through ParentID;
// whether nesting propagates permissions is decided by the resolver configuration.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// UID is the natural key of the group, unique among active groups.
	UID string `gorm:"size:255;not null;uniqueIndex:idx_groups_uid_active"`
	// Name is the display name of the group.
	Name string `gorm:"size:255"`
	// ParentID points to the enclosing group, nil for top level groups.
	ParentID *uint `gorm:"index"`
	// Remark is a free text description.
	Remark string `gorm:"size:512"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time
	// KilledAt is the soft delete marker in unix nanoseconds, 0 while active.
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_groups_uid_active"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}

// GroupMember links a user to a group. The (owner, user) pair is unique while active.
type GroupMember struct {
	ID       uint                  `gorm:"primaryKey"`
	OwnerID  uint                  `gorm:"not null;uniqueIndex:idx_group_members_pair_active"`
	UserID   uint64                `gorm:"not null;index;uniqueIndex:idx_group_members_pair_active"`
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_group_members_pair_active"`
	// CreatedAt is the timestamp when the user joined the group.
	CreatedAt time.Time
}

// TableName specifies the database table name for the GroupMember model.
func (GroupMember) TableName() string {
	return "group_members"
}

// ManagerGroup marks a group whose members hold the "manager" role.
type ManagerGroup struct {
	ID       uint                  `gorm:"primaryKey"`
	GroupID  uint                  `gorm:"not null;uniqueIndex:idx_manager_groups_group_active"`
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_manager_groups_group_active"`
	// CreatedAt is the timestamp when the group was marked (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the ManagerGroup model.
func (ManagerGroup) TableName() string {
	return "manager_groups"
}
