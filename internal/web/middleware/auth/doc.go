// Package auth provides the token authentication middleware of the API.
//
// Clients send the token issued at login in the Authorization header:
//
//	Authorization: Token <token>
//
// The middleware looks the token up in the session store, loads the active
// user and stores it in fiber.Locals under auth.LocalUser. Requests without a
// valid token fail with apperr.ErrUnauthenticated, which the error handler
// renders as 401.
//
// Usage:
//
//	router.Get("/profile", authmiddleware.New(db), handler)
package auth
