package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrInvalidCredentials is returned when the identifier or the password do not match an active user.
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

	// ErrLoginMethodDisabled is returned when logging in by mobile or email while the site configuration forbids it.
	ErrLoginMethodDisabled = errors.New("login method is disabled")

	// ErrRegisterDisabled is returned when self registration is closed for the requested claim kind.
	ErrRegisterDisabled = errors.New("registration is disabled")

	// ErrInvalidClaimToken is returned when an SMS or email claim token cannot be verified.
	ErrInvalidClaimToken = errors.New("invalid claim token")

	// ErrClaimTokenUsed is returned when a claim token is presented a second time.
	ErrClaimTokenUsed = errors.New("claim token has been used")

	// ErrExternalUnbound is returned when an external account is not bound to a local user.
	ErrExternalUnbound = errors.New("this account hasn't registered")
)
