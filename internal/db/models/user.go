package models

import (
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/plugin/soft_delete"
)

// Origin records how a user account came into existence.
type Origin int

const (
	// OriginUnknown is the zero value for accounts of unknown provenance.
	OriginUnknown Origin = iota
	// OriginAdmin indicates the account was created by an administrator.
	OriginAdmin
	// OriginScript indicates the account was created by a script or seed.
	OriginScript
	// OriginMobileRegister indicates self-registration with a verified mobile number.
	OriginMobileRegister
	// OriginEmailRegister indicates self-registration with a verified email address.
	OriginEmailRegister
	// OriginExternal indicates the account was bound through an external login provider.
	OriginExternal
)

var originLabels = map[Origin]string{
	OriginUnknown:        "未知",
	OriginAdmin:          "管理员添加",
	OriginScript:         "脚本添加",
	OriginMobileRegister: "手机注册",
	OriginEmailRegister:  "邮箱注册",
	OriginExternal:       "第三方登录",
}

// Verbose returns the human readable label of the origin.
func (o Origin) Verbose() string {
	if label, ok := originLabels[o]; ok {
		return label
	}

	return originLabels[OriginUnknown]
}

// User represents an account in the identity store.
// Username is unique among active users; killed users keep their row for history.
// Mobile and PrivateEmail are NULL while unset, so only set values collide.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// UUID is a stable hex identifier exposed to client applications.
	UUID string `gorm:"size:32;not null;index"`
	// Username is the login name, unique among active users.
	Username string `gorm:"size:100;not null;uniqueIndex:idx_users_username_active"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// Name is the display name.
	Name string `gorm:"size:255"`
	// Email is the work email address.
	Email string `gorm:"size:255"`
	// Mobile is the verified mobile number. Unique among active users when set.
	Mobile *string `gorm:"size:64;uniqueIndex:idx_users_mobile_active"`
	// PrivateEmail is the verified private email. Unique among active users when set.
	PrivateEmail *string `gorm:"size:255;uniqueIndex:idx_users_private_email_active"`
	// Position is the job title.
	Position string `gorm:"size:255"`
	// EmployeeNumber is the staff number.
	EmployeeNumber string `gorm:"size:255"`
	// Gender is 0 unknown, 1 male, 2 female.
	Gender int `gorm:"not null;default:0"`
	// Avatar is the storage key of the avatar image.
	Avatar string `gorm:"size:1024"`
	// Origin records how the account was created.
	Origin Origin `gorm:"not null;default:0"`
	// IsAdmin marks a superuser; superusers are granted every active permission.
	IsAdmin bool `gorm:"not null;default:false"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// KilledAt is the soft delete marker in unix nanoseconds, 0 while the user is active.
	KilledAt soft_delete.DeletedAt `gorm:"softDelete:nano;not null;default:0;uniqueIndex:idx_users_username_active;uniqueIndex:idx_users_mobile_active;uniqueIndex:idx_users_private_email_active"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// OptionalKey returns nil for an empty value so it is stored as NULL.
func OptionalKey(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

// GetMobile returns the mobile number or "" when unset.
func (u *User) GetMobile() string {
	if u == nil || u.Mobile == nil {
		return ""
	}

	return *u.Mobile
}

// GetPrivateEmail returns the private email or "" when unset.
func (u *User) GetPrivateEmail() string {
	if u == nil || u.PrivateEmail == nil {
		return ""
	}

	return *u.PrivateEmail
}

// BeforeCreate assigns a UUID to users created without one.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.UUID == "" {
		u.UUID = NewUUID()
	}

	return nil
}

// IsSettled reports whether the account can log in with a password of its own.
// Accounts bound through an external provider start unsettled.
func (u *User) IsSettled() bool {
	return u.Password != ""
}

// IsKilled reports whether the user has been soft deleted.
func (u *User) IsKilled() bool {
	return u.KilledAt != 0
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return hashedPassword, nil
}

// SetPassword replaces the stored hash with one for password.
func (u *User) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	u.Password = hashed

	return nil
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// An empty stored hash never matches.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}
