// Package user provides create, kill and lookup operations for user accounts.
// Username, mobile and private email are unique among active users.
package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/db/store"
)

const entity = "user"

// ErrUsernameEmpty is returned when creating a user without a username.
var ErrUsernameEmpty = errors.New("username cannot be empty")

// Profile holds the editable profile fields. Nil pointers are left unchanged.
type Profile struct {
	Name           *string
	Email          *string
	Position       *string
	EmployeeNumber *string
	Gender         *int
	Avatar         *string
}

// Keys returns the natural keys of u that must be unique among active users.
func Keys(u *models.User) []store.Unique {
	return []store.Unique{
		{Entity: entity, Column: "username", Value: u.Username},
		{Entity: entity, Column: "mobile", Value: u.GetMobile()},
		{Entity: entity, Column: "private_email", Value: u.GetPrivateEmail()},
	}
}

// Create inserts u. When password is non-empty it is hashed into u.Password.
func Create(ctx context.Context, db *gorm.DB, u *models.User, password string) error {
	if u.Username == "" {
		return apperr.Invalid("username", ErrUsernameEmpty.Error())
	}

	if password != "" {
		if err := u.SetPassword(password); err != nil {
			return err
		}
	}

	return store.Create(ctx, db, u, Keys(u)...)
}

// Kill soft deletes the user and its group/dept memberships.
func Kill(ctx context.Context, db *gorm.DB, u *models.User) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.Kill(ctx, tx, u); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&models.GroupMember{}).Error; err != nil {
			return fmt.Errorf("failed to kill group memberships: %w", err)
		}

		if err := tx.Where("user_id = ?", u.ID).Delete(&models.DeptMember{}).Error; err != nil {
			return fmt.Errorf("failed to kill dept memberships: %w", err)
		}

		return nil
	})
}

// GetByID returns the active user with id.
func GetByID(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	var u models.User
	if err := store.First(ctx, db, &u, "id = ?", id); err != nil {
		return nil, err
	}

	return &u, nil
}

// GetByUsername returns the active user with username.
func GetByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	return getBy(ctx, db, "username", username)
}

// GetByMobile returns the active user with mobile.
func GetByMobile(ctx context.Context, db *gorm.DB, mobile string) (*models.User, error) {
	return getBy(ctx, db, "mobile", mobile)
}

// GetByPrivateEmail returns the active user with private email.
func GetByPrivateEmail(ctx context.Context, db *gorm.DB, email string) (*models.User, error) {
	return getBy(ctx, db, "private_email", email)
}

func getBy(ctx context.Context, db *gorm.DB, column, value string) (*models.User, error) {
	if value == "" {
		return nil, fmt.Errorf("%s: %w", entity, apperr.ErrNotFound)
	}

	var u models.User
	if err := store.First(ctx, db, &u, column+" = ?", value); err != nil {
		return nil, err
	}

	return &u, nil
}

// SetPassword hashes password and stores it for u.
func SetPassword(ctx context.Context, db *gorm.DB, u *models.User, password string) error {
	if err := u.SetPassword(password); err != nil {
		return err
	}

	return db.WithContext(ctx).Model(u).Update("password", u.Password).Error
}

// SetMobile changes the mobile of u. The new mobile must be unused by other active users.
func SetMobile(ctx context.Context, db *gorm.DB, u *models.User, mobile string) error {
	return setUniqueColumn(ctx, db, u, "mobile", mobile, func() { u.Mobile = models.OptionalKey(mobile) })
}

// SetPrivateEmail changes the private email of u. The new address must be unused by other active users.
func SetPrivateEmail(ctx context.Context, db *gorm.DB, u *models.User, email string) error {
	return setUniqueColumn(ctx, db, u, "private_email", email, func() { u.PrivateEmail = models.OptionalKey(email) })
}

func setUniqueColumn(ctx context.Context, db *gorm.DB, u *models.User, column, value string, apply func()) error {
	key := store.Unique{Entity: entity, Column: column, Value: value}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := store.CheckUnique(tx, u, u.ID, key); err != nil {
			return err
		}

		if err := tx.Model(u).Update(column, models.OptionalKey(value)).Error; err != nil {
			return store.Translate(err, key)
		}

		return nil
	})
	if err != nil {
		return err
	}

	apply()

	return nil
}

// IsMobileUsed reports whether an active user other than exceptID holds mobile.
func IsMobileUsed(ctx context.Context, db *gorm.DB, mobile string, exceptID uint64) (bool, error) {
	err := store.CheckUnique(db.WithContext(ctx), &models.User{}, exceptID,
		store.Unique{Entity: entity, Column: "mobile", Value: mobile})
	if errors.Is(err, apperr.ErrDuplicateKey) {
		return true, nil
	}

	return false, err
}

// UpdateProfile applies the non-nil fields of p to u.
func UpdateProfile(ctx context.Context, db *gorm.DB, u *models.User, p Profile) error {
	updates := map[string]any{}

	if p.Name != nil {
		updates["name"] = *p.Name
	}

	if p.Email != nil {
		updates["email"] = *p.Email
	}

	if p.Position != nil {
		updates["position"] = *p.Position
	}

	if p.EmployeeNumber != nil {
		updates["employee_number"] = *p.EmployeeNumber
	}

	if p.Gender != nil {
		updates["gender"] = *p.Gender
	}

	if p.Avatar != nil {
		updates["avatar"] = *p.Avatar
	}

	if len(updates) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// Depts returns the active depts u belongs to, ordered by id.
func Depts(ctx context.Context, db *gorm.DB, userID uint64) ([]models.Dept, error) {
	var depts []models.Dept

	err := db.WithContext(ctx).
		Where("id IN (?)", db.Model(&models.DeptMember{}).Select("owner_id").Where("user_id = ?", userID)).
		Order("id").
		Find(&depts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list depts: %w", err)
	}

	return depts, nil
}
