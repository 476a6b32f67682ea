package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneid-io/oneid/internal/apperr"
	"github.com/oneid-io/oneid/internal/db/controller/external"
	"github.com/oneid-io/oneid/internal/db/controller/siteconfig"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/dbtest"
	"github.com/oneid-io/oneid/internal/db/models"
)

// fakeClaims accepts the tokens listed in sms and email, for any purpose.
// The token doubles as the claim id.
type fakeClaims struct {
	sms   map[string]string
	email map[string]string
	used  map[string]bool
}

func (f *fakeClaims) VerifySMS(_ context.Context, token string, _ Purpose) (*Claim, error) {
	if mobile, ok := f.sms[token]; ok {
		return &Claim{Mobile: mobile, ID: token}, nil
	}

	return nil, ErrInvalidClaimToken
}

func (f *fakeClaims) VerifyEmail(_ context.Context, token string, _ Purpose) (*Claim, error) {
	if email, ok := f.email[token]; ok {
		return &Claim{Email: email, ID: token}, nil
	}

	return nil, ErrInvalidClaimToken
}

func (f *fakeClaims) Consume(_ context.Context, claims ...*Claim) error {
	if f.used == nil {
		f.used = map[string]bool{}
	}

	for _, c := range claims {
		if c != nil && f.used[c.ID] {
			return ErrClaimTokenUsed
		}
	}

	for _, c := range claims {
		if c != nil {
			f.used[c.ID] = true
		}
	}

	return nil
}

func (f *fakeClaims) Release(_ context.Context, claims ...*Claim) {
	for _, c := range claims {
		if c != nil {
			delete(f.used, c.ID)
		}
	}
}

type fakeExchanger map[string]string

func (f fakeExchanger) Name() string {
	return "ding"
}

func (f fakeExchanger) Exchange(_ context.Context, code string) (string, error) {
	if uid, ok := f[code]; ok {
		return uid, nil
	}

	return "", errors.New("bad code")
}

func openSite() *siteconfig.Snapshot {
	return &siteconfig.Snapshot{
		Account: siteconfig.AccountConfig{AllowRegister: true, AllowMobile: true, AllowEmail: true},
		SMS:     siteconfig.SMSConfig{IsValid: true},
		Email:   siteconfig.EmailConfig{IsValid: true},
	}
}

func fieldMessages(t *testing.T, err error) map[string][]string {
	t.Helper()

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)

	return ve.Fields
}

func TestAuthenticate(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	p := NewLocalProvider(db, &fakeClaims{})

	u := &models.User{Username: "employee", Mobile: models.OptionalKey("18812341234"), PrivateEmail: models.OptionalKey("a@b.com")}
	require.NoError(t, user.Create(ctx, db, u, "password"))

	closed := openSite()
	closed.Account.AllowEmail = false
	closed.SMS.IsValid = false

	testCases := []struct {
		name    string
		site    *siteconfig.Snapshot
		cred    Credentials
		wantErr error
	}{
		{name: "username", site: openSite(), cred: Credentials{Username: "employee", Password: "password"}},
		{name: "mobile", site: openSite(), cred: Credentials{Mobile: "18812341234", Password: "password"}},
		{name: "private email", site: openSite(), cred: Credentials{PrivateEmail: "a@b.com", Password: "password"}},
		{
			name:    "wrong password",
			site:    openSite(),
			cred:    Credentials{Username: "employee", Password: "wrong"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "unknown user",
			site:    openSite(),
			cred:    Credentials{Username: "nobody", Password: "password"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "no identifier",
			site:    openSite(),
			cred:    Credentials{Password: "password"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "mobile login without sms",
			site:    closed,
			cred:    Credentials{Mobile: "18812341234", Password: "password"},
			wantErr: ErrLoginMethodDisabled,
		},
		{
			name:    "email login disallowed",
			site:    closed,
			cred:    Credentials{PrivateEmail: "a@b.com", Password: "password"},
			wantErr: ErrLoginMethodDisabled,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Authenticate(ctx, tc.site, tc.cred)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, apperr.ErrValidation)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
		})
	}
}

func TestRegister(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	claims := &fakeClaims{
		sms:   map[string]string{"sms_token": "18812341234", "sms_token_2": "18812341235"},
		email: map[string]string{"email_token": "a@b.com"},
	}
	p := NewLocalProvider(db, claims)

	u, err := p.Register(ctx, openSite(), Registration{Username: "bob", Password: "123456", SMSToken: "sms_token"})
	require.NoError(t, err)
	assert.Equal(t, "18812341234", u.GetMobile())
	assert.Equal(t, models.OriginMobileRegister, u.Origin)
	assert.True(t, u.VerifyPassword("123456"))
	assert.NotEmpty(t, u.UUID)

	assert.True(t, claims.used["sms_token"])

	_, err = p.Register(ctx, openSite(), Registration{Username: "bob", Password: "123456", SMSToken: "sms_token"})
	require.ErrorIs(t, err, ErrClaimTokenUsed)

	// a rejected registration leaves its token usable
	_, err = p.Register(ctx, openSite(), Registration{Username: "bob", Password: "123456", SMSToken: "sms_token_2"})
	require.ErrorIs(t, err, apperr.ErrDuplicateKey)
	assert.False(t, claims.used["sms_token_2"])

	_, err = p.Register(ctx, openSite(), Registration{Username: "eve", SMSToken: "sms_token_2"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	u, err = p.Register(ctx, openSite(), Registration{Username: "eve", Password: "123456", SMSToken: "sms_token_2"})
	require.NoError(t, err)
	assert.Equal(t, "18812341235", u.GetMobile())

	u, err = p.Register(ctx, openSite(), Registration{Username: "carol", Password: "123456", EmailToken: "email_token"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.GetPrivateEmail())
	assert.Equal(t, models.OriginEmailRegister, u.Origin)

	_, err = p.Register(ctx, openSite(), Registration{Username: "dave", Password: "123456", SMSToken: "bad"})
	require.ErrorIs(t, err, ErrInvalidClaimToken)
	assert.Contains(t, fieldMessages(t, err), "sms_token")

	closed := openSite()
	closed.Account.AllowRegister = false

	_, err = p.Register(ctx, closed, Registration{Username: "dave", Password: "123456", SMSToken: "sms_token"})
	require.ErrorIs(t, err, ErrRegisterDisabled)

	_, err = p.Register(ctx, openSite(), Registration{Username: "dave", Password: "123456"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResetPassword(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	p := NewLocalProvider(db, &fakeClaims{
		sms:   map[string]string{"sms_token": "18812341234"},
		email: map[string]string{"email_token": "a@b.com"},
	})

	u := &models.User{Username: "employee", Mobile: models.OptionalKey("18812341234"), PrivateEmail: models.OptionalKey("a@b.com")}
	require.NoError(t, user.Create(ctx, db, u, "password"))

	testCases := []struct {
		name      string
		reset     PasswordReset
		wantField string
	}{
		{
			name:  "by sms",
			reset: PasswordReset{NewPassword: "sms", Mobile: "18812341234", SMSToken: "sms_token"},
		},
		{
			name:      "sms claim for another mobile",
			reset:     PasswordReset{NewPassword: "sms", Mobile: "18812340000", SMSToken: "sms_token"},
			wantField: "mobile",
		},
		{
			name:  "by email",
			reset: PasswordReset{NewPassword: "email", Email: "a@b.com", EmailToken: "email_token"},
		},
		{
			name:      "email claim for another email",
			reset:     PasswordReset{NewPassword: "email", Email: "c@d.com", EmailToken: "email_token"},
			wantField: "email",
		},
		{
			name:  "by old password",
			reset: PasswordReset{NewPassword: "old", Username: "employee", OldPassword: "email"},
		},
		{
			name:      "wrong old password",
			reset:     PasswordReset{NewPassword: "new", Username: "employee", OldPassword: "wrong"},
			wantField: "old_password",
		},
		{
			name:      "missing new password",
			reset:     PasswordReset{Username: "employee", OldPassword: "old"},
			wantField: "new_password",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.ResetPassword(ctx, tc.reset)
			if tc.wantField != "" {
				assert.Contains(t, fieldMessages(t, err), tc.wantField)

				return
			}

			require.NoError(t, err)

			reloaded, err := user.GetByID(ctx, db, got.ID)
			require.NoError(t, err)
			assert.True(t, reloaded.VerifyPassword(tc.reset.NewPassword))
		})
	}
}

func TestResetPasswordRetry(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	claims := &fakeClaims{sms: map[string]string{"sms_token": "199"}}
	p := NewLocalProvider(db, claims)

	u := &models.User{Username: "employee", Mobile: models.OptionalKey("199")}
	require.NoError(t, user.Create(ctx, db, u, "password"))

	_, err := p.ResetPassword(ctx, PasswordReset{NewPassword: "new", Mobile: "1999", SMSToken: "sms_token"})
	assert.Equal(t, map[string][]string{"mobile": {"invalid"}}, fieldMessages(t, err))
	assert.False(t, claims.used["sms_token"])

	_, err = p.ResetPassword(ctx, PasswordReset{NewPassword: "new", Mobile: "199", SMSToken: "sms_token"})
	require.NoError(t, err)
	assert.True(t, claims.used["sms_token"])

	_, err = p.ResetPassword(ctx, PasswordReset{NewPassword: "newer", Mobile: "199", SMSToken: "sms_token"})
	require.ErrorIs(t, err, ErrClaimTokenUsed)
	assert.Contains(t, fieldMessages(t, err), "sms_token")

	reloaded, err := user.GetByID(ctx, db, u.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.VerifyPassword("new"))
}

func TestUpdateContact(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	p := NewLocalProvider(db, &fakeClaims{
		sms:   map[string]string{"sms_token": "18812341234", "taken": "18800000000"},
		email: map[string]string{"email_token": "a@b.com"},
	})

	other := &models.User{Username: "other", Mobile: models.OptionalKey("18800000000")}
	require.NoError(t, user.Create(ctx, db, other, ""))

	u := &models.User{Username: "employee"}
	require.NoError(t, user.Create(ctx, db, u, "password"))

	require.NoError(t, p.UpdateContact(ctx, u, "email_token", "sms_token"))
	assert.Equal(t, "a@b.com", u.GetPrivateEmail())
	assert.Equal(t, "18812341234", u.GetMobile())

	reloaded, err := user.GetByID(ctx, db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", reloaded.GetPrivateEmail())
	assert.Equal(t, "18812341234", reloaded.GetMobile())

	err = p.UpdateContact(ctx, u, "", "taken")
	require.ErrorIs(t, err, apperr.ErrDuplicateKey)

	err = p.UpdateContact(ctx, u, "", "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateMobile(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	claims := &fakeClaims{sms: map[string]string{
		"mobile_1": "18812341234",
		"mobile_2": "18812341235",
		"mobile_3": "18812341236",
	}}
	p := NewLocalProvider(db, claims)

	other := &models.User{Username: "other", Mobile: models.OptionalKey("18812341235")}
	require.NoError(t, user.Create(ctx, db, other, ""))

	u := &models.User{Username: "employee", Mobile: models.OptionalKey("18812341234")}
	require.NoError(t, user.Create(ctx, db, u, "password"))

	_, err := p.UpdateMobile(ctx, u, "mobile_1", "mobile_2")
	assert.Equal(t, map[string][]string{"new_mobile": {"has been used"}}, fieldMessages(t, err))
	assert.Empty(t, claims.used)

	_, err = p.UpdateMobile(ctx, u, "mobile_3", "mobile_3")
	assert.Equal(t, map[string][]string{"old_mobile": {"invalid"}}, fieldMessages(t, err))

	mobile, err := p.UpdateMobile(ctx, u, "mobile_1", "mobile_3")
	require.NoError(t, err)
	assert.Equal(t, "18812341236", mobile)
	assert.Equal(t, "18812341236", u.GetMobile())
	assert.True(t, claims.used["mobile_1"])
	assert.True(t, claims.used["mobile_3"])
}

func TestAuthenticateExternal(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ex := fakeExchanger{"code": "ding_uid"}

	_, err := AuthenticateExternal(ctx, db, ex, "code")
	assert.Equal(t, map[string][]string{"code": {"this account hasn't registered"}}, fieldMessages(t, err))

	_, err = AuthenticateExternal(ctx, db, ex, "bad")
	assert.Equal(t, map[string][]string{"code": {"invalid"}}, fieldMessages(t, err))

	u := &models.User{Username: "employee"}
	require.NoError(t, user.Create(ctx, db, u, ""))

	_, err = external.Bind(ctx, db, ex.Name(), "ding_uid", u.ID)
	require.NoError(t, err)

	got, err := AuthenticateExternal(ctx, db, ex, "code")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsSettled())
}
