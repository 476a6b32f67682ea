// Package siteconfig stores the site wide account, SMS and email configuration
// as JSON settings rows.
package siteconfig

import (
	"context"
	"errors"
	"slices"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/db/controller/setting"
)

const (
	// SettingKeyAccount is the key used to store the account configuration.
	SettingKeyAccount = "account_config"
	// SettingKeySMS is the key used to store the SMS configuration.
	SettingKeySMS = "sms_config"
	// SettingKeyEmail is the key used to store the email configuration.
	SettingKeyEmail = "email_config"
)

// DefaultVisibleFields are the profile fields shown to other users unless configured otherwise.
var DefaultVisibleFields = []string{"name", "email", "depts", "mobile", "employee_number", "gender"}

var validate = validator.New()

type (
	// AccountConfig controls self registration and the login identifiers accepted.
	AccountConfig struct {
		AllowRegister bool     `json:"allowRegister"`
		AllowMobile   bool     `json:"allowMobile"`
		AllowEmail    bool     `json:"allowEmail"`
		VisibleFields []string `json:"visibleFields" validate:"dive,oneof=name email depts mobile employee_number gender position private_email avatar"`
	}

	// SMSConfig describes the SMS gateway. IsValid is set once the gateway was verified.
	SMSConfig struct {
		IsValid   bool   `json:"isValid"`
		Vendor    string `json:"vendor"    validate:"required_if=IsValid true"`
		AccessKey string `json:"accessKey" validate:"required_if=IsValid true"`
		Secret    string `json:"secret"`
		Signature string `json:"signature"`
		Template  string `json:"template"`
	}

	// EmailConfig describes the SMTP account. IsValid is set once the account was verified.
	EmailConfig struct {
		IsValid  bool   `json:"isValid"`
		Host     string `json:"host"     validate:"required_if=IsValid true,omitempty,hostname|ip"`
		Port     int    `json:"port"     validate:"omitempty,min=1,max=65535"`
		Account  string `json:"account"  validate:"required_if=IsValid true,omitempty,email"`
		Password string `json:"password"`
		FromName string `json:"fromName"`
	}

	// Snapshot is the configuration in effect for one request.
	Snapshot struct {
		Account AccountConfig
		SMS     SMSConfig
		Email   EmailConfig
	}
)

// DefaultAccountConfig returns the account configuration used before one is saved.
func DefaultAccountConfig() AccountConfig {
	return AccountConfig{
		AllowMobile:   true,
		VisibleFields: slices.Clone(DefaultVisibleFields),
	}
}

// Load loads the account configuration, keeping the defaults when none is stored.
func (a *AccountConfig) Load(ctx context.Context, db *gorm.DB) error {
	*a = DefaultAccountConfig()
	return load(ctx, db, SettingKeyAccount, a)
}

// Save validates and stores the account configuration.
func (a *AccountConfig) Save(ctx context.Context, db *gorm.DB) error {
	return save(ctx, db, SettingKeyAccount, a)
}

// Load loads the SMS configuration.
func (s *SMSConfig) Load(ctx context.Context, db *gorm.DB) error {
	*s = SMSConfig{}
	return load(ctx, db, SettingKeySMS, s)
}

// Save validates and stores the SMS configuration.
func (s *SMSConfig) Save(ctx context.Context, db *gorm.DB) error {
	return save(ctx, db, SettingKeySMS, s)
}

// Load loads the email configuration.
func (e *EmailConfig) Load(ctx context.Context, db *gorm.DB) error {
	*e = EmailConfig{}
	return load(ctx, db, SettingKeyEmail, e)
}

// Save validates and stores the email configuration.
func (e *EmailConfig) Save(ctx context.Context, db *gorm.DB) error {
	return save(ctx, db, SettingKeyEmail, e)
}

// Load reads all three configurations.
func Load(ctx context.Context, db *gorm.DB) (*Snapshot, error) {
	s := &Snapshot{}

	if err := s.Account.Load(ctx, db); err != nil {
		return nil, err
	}

	if err := s.SMS.Load(ctx, db); err != nil {
		return nil, err
	}

	if err := s.Email.Load(ctx, db); err != nil {
		return nil, err
	}

	return s, nil
}

// MobileEnabled reports whether mobile numbers are accepted for login and registration.
func (s *Snapshot) MobileEnabled() bool {
	return s.Account.AllowMobile && s.SMS.IsValid
}

// EmailEnabled reports whether private emails are accepted for login and registration.
func (s *Snapshot) EmailEnabled() bool {
	return s.Account.AllowEmail && s.Email.IsValid
}

// RegisterByMobile reports whether self registration with an SMS claim is open.
func (s *Snapshot) RegisterByMobile() bool {
	return s.Account.AllowRegister && s.MobileEnabled()
}

// RegisterByEmail reports whether self registration with an email claim is open.
func (s *Snapshot) RegisterByEmail() bool {
	return s.Account.AllowRegister && s.EmailEnabled()
}

func load(ctx context.Context, db *gorm.DB, key string, v any) error {
	err := setting.LoadJSON(ctx, db, key, v)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil
	}

	return err
}

func save(ctx context.Context, db *gorm.DB, key string, v any) error {
	if err := validate.Struct(v); err != nil {
		return err
	}

	return setting.SaveJSON(ctx, db, key, v)
}
