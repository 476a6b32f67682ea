// Package store implements create and kill for soft deletable records whose
// natural keys are unique among active rows only.
//
// Every such model carries a soft_delete.DeletedAt column (killed_at) that is
// 0 while the row is active and part of each natural key unique index. Killing
// stamps the column with the current unix nanoseconds, which takes the row out
// of the active key space without removing it.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
)

// Unique names one natural key that must not repeat among active rows.
// Zero values are skipped, so optional keys only apply once set.
type Unique struct {
	Entity string
	Column string
	Value  any
}

func (u Unique) err() error {
	return &apperr.KeyError{Entity: u.Entity, Field: u.Column, Value: fmt.Sprint(u.Value)}
}

func (u Unique) zero() bool {
	if u.Value == nil {
		return true
	}

	return reflect.ValueOf(u.Value).IsZero()
}

// Create inserts rec after checking that no active row holds any of keys.
// A unique constraint violation at insert time, e.g. from a concurrent create,
// is reported as the same *apperr.KeyError.
func Create(ctx context.Context, db *gorm.DB, rec any, keys ...Unique) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := CheckUnique(tx, rec, 0, keys...); err != nil {
			return err
		}

		return tx.Create(rec).Error
	})
	if !IsUniqueViolation(err) {
		return err
	}

	// the winning row is committed now, look up which key it took
	if kerr := CheckUnique(db.WithContext(ctx), rec, 0, keys...); kerr != nil {
		return kerr
	}

	return Translate(err, keys...)
}

// CheckUnique returns a *apperr.KeyError if an active row other than the one
// with primary key exceptID holds any of keys.
func CheckUnique(tx *gorm.DB, rec any, exceptID uint64, keys ...Unique) error {
	for _, k := range keys {
		if k.zero() {
			continue
		}

		var count int64

		q := tx.Model(newModel(rec)).Where(k.Column+" = ?", k.Value)
		if exceptID != 0 {
			q = q.Where("id <> ?", exceptID)
		}

		if err := q.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s %s: %w", k.Entity, k.Column, err)
		}

		if count > 0 {
			return k.err()
		}
	}

	return nil
}

// Kill soft deletes rec, which must carry its primary key.
// Killing a row that is already killed or absent returns apperr.ErrNotFound.
func Kill(ctx context.Context, db *gorm.DB, rec any) error {
	res := db.WithContext(ctx).Delete(rec)
	if res.Error != nil {
		return fmt.Errorf("failed to kill %T: %w", rec, res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%T: %w", rec, apperr.ErrNotFound)
	}

	return nil
}

// First loads the first active row matching conds into dest and maps
// gorm.ErrRecordNotFound to apperr.ErrNotFound.
func First(ctx context.Context, db *gorm.DB, dest any, query any, args ...any) error {
	err := db.WithContext(ctx).Where(query, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%T: %w", dest, apperr.ErrNotFound)
	}

	return err
}

// Translate maps a unique constraint violation to a *apperr.KeyError for the
// first non-zero key, and passes any other error through.
func Translate(err error, keys ...Unique) error {
	if err == nil || !IsUniqueViolation(err) {
		return err
	}

	for _, k := range keys {
		if !k.zero() {
			return k.err()
		}
	}

	return fmt.Errorf("%w: %s", apperr.ErrDuplicateKey, err.Error())
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// gorm.ErrDuplicatedKey is only produced with TranslateError enabled, so the
// driver messages of sqlite, mysql and postgres are matched as well.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()

	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func newModel(rec any) any {
	t := reflect.TypeOf(rec)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return reflect.New(t).Interface()
}
