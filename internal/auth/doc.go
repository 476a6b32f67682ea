// Package auth provides authentication and authorization for the identity service.
//
// # Authentication Providers
//
// LocalProvider logs users in by username, private email or mobile and an
// Argon2id password. It also runs the flows that need a verified contact:
// registration, password reset and contact changes. A contact is proven with
// a short lived claim token checked by a ClaimVerifier; JWTClaimVerifier is
// the built-in implementation and rejects a token presented twice.
//
// External logins map an account of another system onto a bound local user:
// OIDCExchanger turns an authorization code into the provider subject and
// LDAPProvider turns directory credentials into the entry DN.
//
// # Authorization System
//
// Service resolves the permissions of a user in two phases. The base set is
// the union of the grants of the user's groups and departments, or every
// active permission for a superuser. Explicit per user overrides are applied
// on top. Roles are derived from the same data: admin for superusers,
// manager for members of a manager group, plus statically configured roles.
//
// Example usage:
//
//	authService := auth.NewService(db, auth.Options{})
//
//	res, err := authService.RequirePermission(ctx, userID, auth.PermSystemOneIDAll)
//
//	app.Get("/auth/token", requireToken, auth.RequireQueryPermission(authService, "perm_uid"), handler)
package auth
