// Package setting provides CRUD operations for named JSON settings rows.
package setting

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to read or write a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}

		return nil, result.Error
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(ctx context.Context, db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	if err := db.WithContext(ctx).Order("name").Find(&settings).Error; err != nil {
		return nil, err
	}

	return settings, nil
}

// Set creates or updates a setting by name (upsert operation).
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(nameQueryPattern, name).First(&setting)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			setting = models.Setting{Name: name, Value: value}
			return tx.Create(&setting).Error
		}

		if result.Error != nil {
			return result.Error
		}

		setting.Value = value

		return tx.Save(&setting).Error
	})
	if err != nil {
		return nil, err
	}

	return &setting, nil
}

// Delete deletes a setting by name.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// LoadJSON decodes the named setting into v. A missing setting leaves v untouched
// and returns ErrSettingNotFound.
func LoadJSON(ctx context.Context, db *gorm.DB, name string, v any) error {
	s, err := Get(ctx, db, name)
	if err != nil {
		return err
	}

	return json.Unmarshal(s.Value, v)
}

// SaveJSON encodes v and stores it under name.
func SaveJSON(ctx context.Context, db *gorm.DB, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = Set(ctx, db, name, data)

	return err
}
