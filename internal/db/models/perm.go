package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// Perm is a grantable capability identified by its UID (e.g. "system_oneid_all").
type Perm struct {
	// ID is the unique identifier for the permission. Resolved permission
	// lists are ordered by ID.
	ID uint `gorm:"primaryKey"`
	// UID is the natural key, unique among active permissions.
	UID string `gorm:"size:255;not null;uniqueIndex:idx_perms_uid_active"`
	// Name is a human-readable label.
	Name string `gorm:"size:255"`
	// Scope groups permissions by the application they belong to.
	Scope string `gorm:"size:255"`
	// Remark is a free text description.
	Remark string `gorm:"size:512"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
	// KilledAt is the soft delete marker in unix nanoseconds, 0 while active.
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_perms_uid_active"`
}

// TableName specifies the database table name for the Perm model.
func (Perm) TableName() string {
	return "perms"
}

// UserPerm is an explicit per-user override. Value false revokes the
// permission even when otherwise granted; value true grants it.
type UserPerm struct {
	ID        uint64                `gorm:"primaryKey"`
	OwnerID   uint64                `gorm:"not null;uniqueIndex:idx_user_perms_pair_active"`
	PermID    uint                  `gorm:"not null;index;uniqueIndex:idx_user_perms_pair_active"`
	Value     bool                  `gorm:"not null"`
	KilledAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_user_perms_pair_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the UserPerm model.
func (UserPerm) TableName() string {
	return "user_perms"
}

// GroupPerm grants (Value true) a permission to every member of a group.
type GroupPerm struct {
	ID        uint                  `gorm:"primaryKey"`
	OwnerID   uint                  `gorm:"not null;uniqueIndex:idx_group_perms_pair_active"`
	PermID    uint                  `gorm:"not null;index;uniqueIndex:idx_group_perms_pair_active"`
	Value     bool                  `gorm:"not null"`
	KilledAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_group_perms_pair_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the GroupPerm model.
func (GroupPerm) TableName() string {
	return "group_perms"
}

// DeptPerm grants (Value true) a permission to every member of a dept.
type DeptPerm struct {
	ID        uint                  `gorm:"primaryKey"`
	OwnerID   uint                  `gorm:"not null;uniqueIndex:idx_dept_perms_pair_active"`
	PermID    uint                  `gorm:"not null;index;uniqueIndex:idx_dept_perms_pair_active"`
	Value     bool                  `gorm:"not null"`
	KilledAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_dept_perms_pair_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the DeptPerm model.
func (DeptPerm) TableName() string {
	return "dept_perms"
}
