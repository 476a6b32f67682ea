package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// ExternalIdentity binds an account of an external login provider to a local user.
// The (provider, uid) pair is unique while active.
type ExternalIdentity struct {
	// ID is the unique identifier for the binding.
	ID uint64 `gorm:"primaryKey"`
	// Provider names the external login provider (e.g. "oidc").
	Provider string `gorm:"size:64;not null;uniqueIndex:idx_external_identities_active"`
	// UID is the subject identifier issued by the provider.
	UID string `gorm:"size:255;not null;uniqueIndex:idx_external_identities_active"`
	// UserID is the bound local user.
	UserID uint64 `gorm:"not null;index"`
	// CreatedAt is the timestamp when the binding was created (managed by GORM).
	CreatedAt time.Time
	// KilledAt is the soft delete marker in unix nanoseconds, 0 while active.
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_external_identities_active"`
}

// TableName specifies the database table name for the ExternalIdentity model.
func (ExternalIdentity) TableName() string {
	return "external_identities"
}
