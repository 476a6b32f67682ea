package setting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oneid-io/oneid/internal/db/dbtest"
	"github.com/oneid-io/oneid/internal/db/models"
)

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "account_config",
			seedData: []models.Setting{
				{Name: "account_config", Value: []byte(`{"allowRegister":true}`)},
			},
			expectedValue: []byte(`{"allowRegister":true}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(ctx, tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.settingName, setting.Name)
				assert.Equal(t, tc.expectedValue, setting.Value)
			}
		})
	}
}

func TestGetAll(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	_, err := GetAll(ctx, nil)
	require.ErrorIs(t, err, ErrDBNil)

	settings, err := GetAll(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, settings)

	seedSettings(t, db, []models.Setting{
		{Name: "sms_config", Value: []byte("{}")},
		{Name: "account_config", Value: []byte("{}")},
		{Name: "email_config", Value: []byte("{}")},
	})

	settings, err = GetAll(ctx, db)
	require.NoError(t, err)
	require.Len(t, settings, 3)
	assert.Equal(t, "account_config", settings[0].Name)
	assert.Equal(t, "sms_config", settings[2].Name)
}

func TestSet(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	_, err := Set(ctx, db, "", []byte("x"))
	require.ErrorIs(t, err, ErrSettingNameEmpty)

	created, err := Set(ctx, db, "account_config", []byte("v1"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := Set(ctx, db, "account_config", []byte("v2"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err := Get(ctx, db, "account_config")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Value)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	require.ErrorIs(t, Delete(ctx, nil, "x"), ErrDBNil)
	require.ErrorIs(t, Delete(ctx, db, ""), ErrSettingNameEmpty)
	require.ErrorIs(t, Delete(ctx, db, "missing"), ErrSettingNotFound)

	_, err := Set(ctx, db, "sms_config", []byte("{}"))
	require.NoError(t, err)
	require.NoError(t, Delete(ctx, db, "sms_config"))

	_, err = Get(ctx, db, "sms_config")
	require.ErrorIs(t, err, ErrSettingNotFound)
}

func TestJSONRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	type payload struct {
		Enabled bool   `json:"enabled"`
		Host    string `json:"host"`
	}

	var missing payload
	require.ErrorIs(t, LoadJSON(ctx, db, "smtp", &missing), ErrSettingNotFound)

	require.NoError(t, SaveJSON(ctx, db, "smtp", payload{Enabled: true, Host: "mail.example.com"}))

	var got payload
	require.NoError(t, LoadJSON(ctx, db, "smtp", &got))
	assert.Equal(t, payload{Enabled: true, Host: "mail.example.com"}, got)
}
