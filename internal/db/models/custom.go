package models

import (
	"time"

	"gorm.io/plugin/soft_delete"
)

// CustomFieldSubjectUser is the subject of custom fields attached to user profiles.
const CustomFieldSubjectUser = "user"

// CustomField is an administrator defined profile field. Values are kept in
// CustomUser.Data keyed by UUID, so killing or hiding a field never drops data.
type CustomField struct {
	// ID is the unique identifier for the field.
	ID uint `gorm:"primaryKey"`
	// UUID is the hex encoded uuid used as key in CustomUser.Data.
	UUID string `gorm:"size:32;not null;uniqueIndex:idx_custom_fields_uuid_active"`
	// Name is the label shown to users.
	Name string `gorm:"size:255;not null"`
	// Subject is the kind of record the field extends.
	Subject string `gorm:"size:32;not null"`
	// SortOrder orders the rendered fields, ties broken by ID.
	SortOrder int `gorm:"not null;default:0"`
	// IsVisible controls whether the field is rendered.
	IsVisible bool `gorm:"not null"`
	// CreatedAt is the timestamp when the field was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the field was last updated (managed by GORM).
	UpdatedAt time.Time
	// KilledAt is the soft delete marker in unix nanoseconds, 0 while active.
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_custom_fields_uuid_active"`
}

// TableName specifies the database table name for the CustomField model.
func (CustomField) TableName() string {
	return "custom_fields"
}

// CustomUser stores the raw custom field values of one user.
type CustomUser struct {
	ID        uint64            `gorm:"primaryKey"`
	UserID    uint64            `gorm:"not null;uniqueIndex"`
	Data      map[string]string `gorm:"serializer:json;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the CustomUser model.
func (CustomUser) TableName() string {
	return "custom_users"
}
