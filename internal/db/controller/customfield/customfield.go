// Package customfield manages administrator defined profile fields and the
// per-user values stored for them.
//
// Values are keyed by field UUID and are never dropped when a field is
// hidden or killed; such fields are only left out of the rendered profile.
package customfield

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

type (
	// Item is one rendered custom field of a profile.
	Item struct {
		UUID  string `json:"uuid"`
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	// Profile holds the raw values and the rendered visible fields of a user.
	Profile struct {
		Data   map[string]string `json:"data"`
		Pretty []Item            `json:"pretty"`
	}
)

// Create inserts a visible user field named name.
func Create(ctx context.Context, db *gorm.DB, name string, sortOrder int) (*models.CustomField, error) {
	if name == "" {
		return nil, apperr.Invalid("name", "this field may not be blank")
	}

	f := &models.CustomField{
		UUID:      models.NewUUID(),
		Name:      name,
		Subject:   models.CustomFieldSubjectUser,
		SortOrder: sortOrder,
		IsVisible: true,
	}

	if err := store.Create(ctx, db, f, store.Unique{Entity: "custom field", Column: "uuid", Value: f.UUID}); err != nil {
		return nil, err
	}

	return f, nil
}

// Kill soft deletes the field. Stored values are kept.
func Kill(ctx context.Context, db *gorm.DB, f *models.CustomField) error {
	return store.Kill(ctx, db, f)
}

// SetVisible shows or hides the field.
func SetVisible(ctx context.Context, db *gorm.DB, f *models.CustomField, visible bool) error {
	if err := db.WithContext(ctx).Model(f).Update("is_visible", visible).Error; err != nil {
		return fmt.Errorf("failed to update custom field %s: %w", f.UUID, err)
	}

	f.IsVisible = visible

	return nil
}

// Active returns the active user fields ordered by sort order then id.
func Active(ctx context.Context, db *gorm.DB) ([]models.CustomField, error) {
	var fields []models.CustomField

	err := db.WithContext(ctx).
		Where("subject = ?", models.CustomFieldSubjectUser).
		Order("sort_order").Order("id").
		Find(&fields).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}

	return fields, nil
}

// SaveValues merges values into the stored data of the user. Every key must be
// the UUID of an active field.
func SaveValues(ctx context.Context, db *gorm.DB, userID uint64, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var known []string
		if err := tx.Model(&models.CustomField{}).Pluck("uuid", &known).Error; err != nil {
			return fmt.Errorf("failed to list custom fields: %w", err)
		}

		active := make(map[string]bool, len(known))
		for _, k := range known {
			active[k] = true
		}

		verr := &apperr.ValidationError{}
		for k := range values {
			if !active[k] {
				verr.Add("custom_user", fmt.Sprintf("unknown field %s", k))
			}
		}

		if len(verr.Fields) > 0 {
			return verr
		}

		cu, err := load(tx, userID)
		if err != nil {
			return err
		}

		if cu.Data == nil {
			cu.Data = make(map[string]string, len(values))
		}

		for k, v := range values {
			cu.Data[k] = v
		}

		if err := tx.Save(cu).Error; err != nil {
			return fmt.Errorf("failed to save custom values of user %d: %w", userID, err)
		}

		return nil
	})
}

// Render returns the raw values of the user and the rendered list of active,
// visible fields that hold a value.
func Render(ctx context.Context, db *gorm.DB, userID uint64) (*Profile, error) {
	cu, err := load(db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	fields, err := Active(ctx, db)
	if err != nil {
		return nil, err
	}

	p := &Profile{Data: cu.Data, Pretty: []Item{}}
	if p.Data == nil {
		p.Data = map[string]string{}
	}

	for _, f := range fields {
		if !f.IsVisible {
			continue
		}

		v, ok := p.Data[f.UUID]
		if !ok {
			continue
		}

		p.Pretty = append(p.Pretty, Item{UUID: f.UUID, Name: f.Name, Value: v})
	}

	return p, nil
}

func load(db *gorm.DB, userID uint64) (*models.CustomUser, error) {
	var cu models.CustomUser

	err := db.Where("user_id = ?", userID).First(&cu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CustomUser{UserID: userID}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load custom values of user %d: %w", userID, err)
	}

	return &cu, nil
}
