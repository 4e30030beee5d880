// Package handler provides the HTTP request handlers for the task API.
//
// Each handler struct wraps the services it needs and translates between
// HTTP and the service layer: decoding bodies, mapping service errors to
// RFC 9457 Problem Details via MapServiceError, and formatting responses.
//
// Handlers behind the auth middleware read the request identity with
// middleware.GetUser and middleware.GetToken; they never parse the
// Authorization header themselves.
package handler
