// Package models contains database model definitions.
package models

import "gorm.io/gorm"

// Setting represents a configuration setting stored in the database as a JSON blob.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique;size:100"`
	Value []byte
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// AutoMigrate creates or updates the schema of every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Group{},
		&GroupMember{},
		&ManagerGroup{},
		&Dept{},
		&DeptMember{},
		&Perm{},
		&UserPerm{},
		&GroupPerm{},
		&DeptPerm{},
		&CustomField{},
		&CustomUser{},
		&ExternalIdentity{},
		&Setting{},
	)
}
