// Package middleware provides HTTP middleware for the task API.
//
// The auth middleware accepts a bearer token only when it both verifies
// cryptographically and is still recorded on the user's session list, so
// individual sessions can be revoked without invalidating the rest.
//
// After authentication, handlers read the request identity from context:
//
//	user := middleware.GetUser(r.Context())
//	token := middleware.GetToken(r.Context())
//
// The raw token is carried alongside the user so a logout handler can
// revoke exactly the session that called it.
package middleware
