package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/controller/siteconfig"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/models"
)

const (
	fieldNonField   = "non_field_errors"
	fieldMobile     = "mobile"
	fieldEmail      = "email"
	fieldSMSToken   = "sms_token"
	fieldEmailToken = "email_token"
	fieldNewMobile  = "new_mobile"
	fieldOldMobile  = "old_mobile"
	msgInvalid      = "invalid"
	msgRequired     = "this field is required"
	msgHasBeenUsed  = "has been used"
)

type (
	// Credentials identify a user by exactly one of username, private email or
	// mobile, plus the password.
	Credentials struct {
		Username     string
		PrivateEmail string
		Mobile       string
		Password     string
	}

	// Registration creates an account from a verified SMS or email claim.
	Registration struct {
		Username   string
		Password   string
		SMSToken   string
		EmailToken string
	}

	// PasswordReset sets a new password proven by an SMS claim, an email claim
	// or the old password.
	PasswordReset struct {
		NewPassword string
		Mobile      string
		SMSToken    string
		Email       string
		EmailToken  string
		Username    string
		OldPassword string
	}
)

// LocalProvider handles password login and the claim based account flows
// against the local database.
type LocalProvider struct {
	db     *gorm.DB
	claims ClaimVerifier
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB, claims ClaimVerifier) *LocalProvider {
	return &LocalProvider{
		db:     db,
		claims: claims,
	}
}

// invalid reports cause at the request boundary as a message on field.
func invalid(field string, cause error) error {
	return errors.Join(cause, apperr.Invalid(field, cause.Error()))
}

// commit consumes claims and runs write. The claims are released again when
// write fails. A claim consumed concurrently is reported on field.
func (p *LocalProvider) commit(ctx context.Context, field string, write func() error, claims ...*Claim) error {
	if err := p.claims.Consume(ctx, claims...); err != nil {
		return invalid(field, err)
	}

	if err := write(); err != nil {
		p.claims.Release(ctx, claims...)
		return err
	}

	return nil
}

// Authenticate looks the user up by the identifier present in cred and verifies
// the password. Email and mobile logins must be enabled in site.
func (p *LocalProvider) Authenticate(
	ctx context.Context, site *siteconfig.Snapshot, cred Credentials,
) (*models.User, error) {
	var (
		u   *models.User
		err error
	)

	switch {
	case cred.Username != "":
		u, err = user.GetByUsername(ctx, p.db, cred.Username)
	case cred.PrivateEmail != "":
		if !site.EmailEnabled() {
			return nil, invalid(fieldNonField, ErrLoginMethodDisabled)
		}

		u, err = user.GetByPrivateEmail(ctx, p.db, cred.PrivateEmail)
	case cred.Mobile != "":
		if !site.MobileEnabled() {
			return nil, invalid(fieldNonField, ErrLoginMethodDisabled)
		}

		u, err = user.GetByMobile(ctx, p.db, cred.Mobile)
	default:
		return nil, invalid(fieldNonField, ErrInvalidCredentials)
	}

	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid(fieldNonField, ErrInvalidCredentials)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !u.VerifyPassword(cred.Password) {
		return nil, invalid(fieldNonField, ErrInvalidCredentials)
	}

	return u, nil
}

// Register creates an account for the mobile or email asserted by the claim token.
// The origin of the account records which claim was used.
func (p *LocalProvider) Register(ctx context.Context, site *siteconfig.Snapshot, r Registration) (*models.User, error) {
	var (
		u     = &models.User{Username: r.Username}
		field string
		proof *Claim
	)

	switch {
	case r.SMSToken != "":
		if !site.RegisterByMobile() {
			return nil, invalid(fieldSMSToken, ErrRegisterDisabled)
		}

		claim, err := p.claims.VerifySMS(ctx, r.SMSToken, PurposeRegister)
		if err != nil {
			return nil, invalid(fieldSMSToken, err)
		}

		u.Mobile = models.OptionalKey(claim.Mobile)
		u.Origin = models.OriginMobileRegister
		field, proof = fieldSMSToken, claim
	case r.EmailToken != "":
		if !site.RegisterByEmail() {
			return nil, invalid(fieldEmailToken, ErrRegisterDisabled)
		}

		claim, err := p.claims.VerifyEmail(ctx, r.EmailToken, PurposeRegister)
		if err != nil {
			return nil, invalid(fieldEmailToken, err)
		}

		u.PrivateEmail = models.OptionalKey(claim.Email)
		u.Origin = models.OriginEmailRegister
		field, proof = fieldEmailToken, claim
	default:
		return nil, apperr.Invalid(fieldSMSToken, msgRequired).Add(fieldEmailToken, msgRequired)
	}

	if r.Password == "" {
		return nil, apperr.Invalid("password", msgRequired)
	}

	err := p.commit(ctx, field, func() error {
		return user.Create(ctx, p.db, u, r.Password)
	}, proof)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// ResetPassword verifies the proof carried by r and sets the new password.
func (p *LocalProvider) ResetPassword(ctx context.Context, r PasswordReset) (*models.User, error) {
	if r.NewPassword == "" {
		return nil, apperr.Invalid("new_password", msgRequired)
	}

	u, field, proof, err := p.resetTarget(ctx, r)
	if err != nil {
		return nil, err
	}

	err = p.commit(ctx, field, func() error {
		if err := user.SetPassword(ctx, p.db, u, r.NewPassword); err != nil {
			return fmt.Errorf("failed to set password: %w", err)
		}

		return nil
	}, proof)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// resetTarget returns the user r proves control of, plus the claim used as
// proof and its request field. Old password resets carry no claim.
func (p *LocalProvider) resetTarget(ctx context.Context, r PasswordReset) (*models.User, string, *Claim, error) {
	switch {
	case r.SMSToken != "":
		claim, err := p.claims.VerifySMS(ctx, r.SMSToken, PurposeResetPassword)
		if err != nil {
			return nil, "", nil, invalid(fieldSMSToken, err)
		}

		if r.Mobile == "" || claim.Mobile != r.Mobile {
			return nil, "", nil, apperr.Invalid(fieldMobile, msgInvalid)
		}

		u, err := user.GetByMobile(ctx, p.db, r.Mobile)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", nil, apperr.Invalid(fieldMobile, msgInvalid)
		}

		return u, fieldSMSToken, claim, err
	case r.EmailToken != "":
		claim, err := p.claims.VerifyEmail(ctx, r.EmailToken, PurposeResetPassword)
		if err != nil {
			return nil, "", nil, invalid(fieldEmailToken, err)
		}

		if r.Email == "" || claim.Email != r.Email {
			return nil, "", nil, apperr.Invalid(fieldEmail, msgInvalid)
		}

		u, err := user.GetByPrivateEmail(ctx, p.db, r.Email)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", nil, apperr.Invalid(fieldEmail, msgInvalid)
		}

		return u, fieldEmailToken, claim, err
	case r.Username != "":
		u, err := user.GetByUsername(ctx, p.db, r.Username)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, "", nil, invalid("old_password", ErrInvalidOldPassword)
		}

		if err != nil {
			return nil, "", nil, err
		}

		if !u.VerifyPassword(r.OldPassword) {
			return nil, "", nil, invalid("old_password", ErrInvalidOldPassword)
		}

		return u, "old_password", nil, nil
	default:
		return nil, "", nil, invalid(fieldNonField, ErrInvalidCredentials)
	}
}

// UpdateContact binds the private email asserted by emailToken and the mobile
// asserted by smsToken to u. Empty tokens are skipped.
func (p *LocalProvider) UpdateContact(ctx context.Context, u *models.User, emailToken, smsToken string) error {
	if emailToken == "" && smsToken == "" {
		return apperr.Invalid(fieldEmailToken, msgRequired).Add(fieldSMSToken, msgRequired)
	}

	if emailToken != "" {
		claim, err := p.claims.VerifyEmail(ctx, emailToken, PurposeUpdateContact)
		if err != nil {
			return invalid(fieldEmailToken, err)
		}

		err = p.commit(ctx, fieldEmailToken, func() error {
			return user.SetPrivateEmail(ctx, p.db, u, claim.Email)
		}, claim)
		if err != nil {
			return err
		}
	}

	if smsToken != "" {
		claim, err := p.claims.VerifySMS(ctx, smsToken, PurposeUpdateContact)
		if err != nil {
			return invalid(fieldSMSToken, err)
		}

		err = p.commit(ctx, fieldSMSToken, func() error {
			return user.SetMobile(ctx, p.db, u, claim.Mobile)
		}, claim)
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateMobile replaces the mobile of u. oldToken must assert the current
// mobile and newToken a mobile no other active user holds.
func (p *LocalProvider) UpdateMobile(ctx context.Context, u *models.User, oldToken, newToken string) (string, error) {
	oldClaim, err := p.claims.VerifySMS(ctx, oldToken, PurposeUpdateMobile)
	if err != nil {
		return "", invalid("old_mobile_sms_token", err)
	}

	newClaim, err := p.claims.VerifySMS(ctx, newToken, PurposeUpdateMobile)
	if err != nil {
		return "", invalid("new_mobile_sms_token", err)
	}

	if u.GetMobile() == "" || oldClaim.Mobile != u.GetMobile() {
		return "", apperr.Invalid(fieldOldMobile, msgInvalid)
	}

	used, err := user.IsMobileUsed(ctx, p.db, newClaim.Mobile, u.ID)
	if err != nil {
		return "", err
	}

	if used {
		return "", apperr.Invalid(fieldNewMobile, msgHasBeenUsed)
	}

	err = p.commit(ctx, "new_mobile_sms_token", func() error {
		return user.SetMobile(ctx, p.db, u, newClaim.Mobile)
	}, oldClaim, newClaim)
	if errors.Is(err, apperr.ErrDuplicateKey) {
		return "", apperr.Invalid(fieldNewMobile, msgHasBeenUsed)
	}

	if err != nil {
		return "", err
	}

	return newClaim.Mobile, nil
}
