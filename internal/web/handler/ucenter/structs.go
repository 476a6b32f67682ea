package ucenter

import (
	"github.com/oneid-io/oneid/internal/auth"
	"github.com/oneid-io/oneid/internal/db/controller/customfield"
	"github.com/oneid-io/oneid/internal/db/models"
)

type (
	// LoginRequest identifies the user by exactly one of username, private email or mobile.
	LoginRequest struct {
		Username     string `json:"username"      form:"username"`
		PrivateEmail string `json:"private_email" form:"private_email"`
		Mobile       string `json:"mobile"        form:"mobile"`
		Password     string `json:"password"      form:"password"      validate:"required"`
	}

	// DirectoryLoginRequest carries directory credentials.
	DirectoryLoginRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	// ExternalLoginRequest carries the authorization code of an external provider.
	ExternalLoginRequest struct {
		Code string `json:"code" form:"code"`
	}

	// RegisterRequest creates an account from an SMS or email claim token.
	RegisterRequest struct {
		Username   string `json:"username"    form:"username"    validate:"required,max=100"`
		Password   string `json:"password"    form:"password"    validate:"required"`
		SMSToken   string `json:"sms_token"   form:"sms_token"`
		EmailToken string `json:"email_token" form:"email_token"`
	}

	// PasswordRequest resets the password by claim token or old password.
	PasswordRequest struct {
		NewPassword string `json:"new_password" form:"new_password"`
		Mobile      string `json:"mobile"       form:"mobile"`
		SMSToken    string `json:"sms_token"    form:"sms_token"`
		Email       string `json:"email"        form:"email"`
		EmailToken  string `json:"email_token"  form:"email_token"`
		Username    string `json:"username"     form:"username"`
		OldPassword string `json:"old_password" form:"old_password"`
	}

	// ContactRequest updates the private email and/or mobile from claim tokens.
	ContactRequest struct {
		EmailToken string `json:"email_token" form:"email_token"`
		SMSToken   string `json:"sms_token"   form:"sms_token"`
	}

	// MobileRequest swaps the mobile, proving both the old and the new number.
	MobileRequest struct {
		OldMobileSMSToken string `json:"old_mobile_sms_token" form:"old_mobile_sms_token" validate:"required"`
		NewMobileSMSToken string `json:"new_mobile_sms_token" form:"new_mobile_sms_token" validate:"required"`
	}

	// CustomUserRequest carries custom field values keyed by field uuid.
	CustomUserRequest struct {
		Data map[string]string `json:"data"`
	}

	// ProfileRequest updates the editable profile fields. Absent fields are left unchanged.
	ProfileRequest struct {
		Name           *string            `json:"name"            validate:"omitempty,max=255"`
		Email          *string            `json:"email"           validate:"omitempty,email"`
		Position       *string            `json:"position"        validate:"omitempty,max=255"`
		EmployeeNumber *string            `json:"employee_number" validate:"omitempty,max=255"`
		Gender         *int               `json:"gender"          validate:"omitempty,oneof=0 1 2"`
		Avatar         *string            `json:"avatar"          validate:"omitempty,max=1024"`
		CustomUser     *CustomUserRequest `json:"custom_user"`
	}

	// UserInfo is the user as seen by client applications, with its resolved
	// permissions and roles.
	UserInfo struct {
		UserID         uint64   `json:"user_id"`
		UUID           string   `json:"uuid"`
		Username       string   `json:"username"`
		Name           string   `json:"name"`
		Email          string   `json:"email"`
		Mobile         string   `json:"mobile"`
		PrivateEmail   string   `json:"private_email"`
		Position       string   `json:"position"`
		EmployeeNumber string   `json:"employee_number"`
		Gender         int      `json:"gender"`
		Avatar         string   `json:"avatar"`
		Perms          []string `json:"perms"`
		Roles          []string `json:"roles"`
		IsAdmin        bool     `json:"is_admin"`
		IsManager      bool     `json:"is_manager"`
		IsSettled      bool     `json:"is_settled"`
		OriginVerbose  string   `json:"origin_verbose"`
	}

	// LoginResponse is returned by every login and by registration.
	LoginResponse struct {
		Token string `json:"token"`
		UserInfo
	}

	// DeptInfo is a dept of the profile.
	DeptInfo struct {
		UID  string `json:"uid"`
		Name string `json:"name"`
	}

	// ProfileResponse is the profile of the caller.
	ProfileResponse struct {
		Username       string               `json:"username"`
		Name           string               `json:"name"`
		Email          string               `json:"email"`
		Mobile         string               `json:"mobile"`
		EmployeeNumber string               `json:"employee_number"`
		PrivateEmail   string               `json:"private_email"`
		Position       string               `json:"position"`
		Gender         int                  `json:"gender"`
		Avatar         string               `json:"avatar"`
		VisibleFields  []string             `json:"visible_fields"`
		Depts          []DeptInfo           `json:"depts"`
		CustomUser     *customfield.Profile `json:"custom_user,omitempty"`
	}

	// ContactResponse holds the contact details after an update.
	ContactResponse struct {
		PrivateEmail string `json:"private_email"`
		Mobile       string `json:"mobile"`
	}

	// MobileResponse holds the new mobile after a swap.
	MobileResponse struct {
		NewMobile string `json:"new_mobile"`
	}
)

func newUserInfo(u *models.User, res *auth.Resolution) UserInfo {
	return UserInfo{
		UserID:         u.ID,
		UUID:           u.UUID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Mobile:         u.GetMobile(),
		PrivateEmail:   u.GetPrivateEmail(),
		Position:       u.Position,
		EmployeeNumber: u.EmployeeNumber,
		Gender:         u.Gender,
		Avatar:         u.Avatar,
		Perms:          res.Perms,
		Roles:          res.Roles,
		IsAdmin:        res.IsAdmin,
		IsManager:      res.IsManager,
		IsSettled:      u.IsSettled(),
		OriginVerbose:  u.Origin.Verbose(),
	}
}
