package siteconfig

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneid-io/oneid/internal/db/dbtest"
)

func TestLoadDefaults(t *testing.T) {
	db := dbtest.Open(t)

	snap, err := Load(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, DefaultAccountConfig(), snap.Account)
	assert.False(t, snap.SMS.IsValid)
	assert.False(t, snap.Email.IsValid)
	assert.False(t, snap.MobileEnabled())
	assert.False(t, snap.RegisterByEmail())
}

func TestSaveAndLoad(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	account := AccountConfig{AllowRegister: true, AllowMobile: true, AllowEmail: true, VisibleFields: []string{"name"}}
	require.NoError(t, account.Save(ctx, db))

	sms := SMSConfig{IsValid: true, Vendor: "aliyun", AccessKey: "key"}
	require.NoError(t, sms.Save(ctx, db))

	snap, err := Load(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, account, snap.Account)
	assert.Equal(t, sms, snap.SMS)

	assert.True(t, snap.MobileEnabled())
	assert.True(t, snap.RegisterByMobile())
	assert.False(t, snap.EmailEnabled())
	assert.False(t, snap.RegisterByEmail())
}

func TestSaveValidates(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		save    func() error
		wantErr bool
	}{
		{
			name:    "valid sms requires vendor",
			save:    func() error { return (&SMSConfig{IsValid: true}).Save(ctx, db) },
			wantErr: true,
		},
		{
			name: "invalid sms may be empty",
			save: func() error { return (&SMSConfig{}).Save(ctx, db) },
		},
		{
			name:    "valid email requires host and account",
			save:    func() error { return (&EmailConfig{IsValid: true}).Save(ctx, db) },
			wantErr: true,
		},
		{
			name: "valid email",
			save: func() error {
				return (&EmailConfig{IsValid: true, Host: "smtp.example.com", Port: 465, Account: "noreply@example.com"}).Save(ctx, db)
			},
		},
		{
			name:    "unknown visible field",
			save:    func() error { return (&AccountConfig{VisibleFields: []string{"password"}}).Save(ctx, db) },
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.save()
			if tc.wantErr {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)

				return
			}

			require.NoError(t, err)
		})
	}
}
