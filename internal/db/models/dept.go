package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// Dept is an organisational unit. Like groups, depts may nest through ParentID.
type Dept struct {
	ID       uint   `gorm:"primaryKey"`
	UID      string `gorm:"size:255;not null;uniqueIndex:idx_depts_uid_active"`
	Name     string `gorm:"size:255"`
	ParentID *uint  `gorm:"index"`
	Remark   string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
	KilledAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_depts_uid_active"`
}

// TableName specifies the database table name for the Dept model.
func (Dept) TableName() string {
	return "depts"
}

// DeptMember links a user to a dept. The (owner, user) pair is unique while active.
type DeptMember struct {
	ID        uint                  `gorm:"primaryKey"`
	OwnerID   uint                  `gorm:"not null;uniqueIndex:idx_dept_members_pair_active"`
	UserID    uint64                `gorm:"not null;index;uniqueIndex:idx_dept_members_pair_active"`
	KilledAt  soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_dept_members_pair_active"`
	CreatedAt time.Time
}

// TableName specifies the database table name for the DeptMember model.
func (DeptMember) TableName() string {
	return "dept_members"
}
