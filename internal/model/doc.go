// Package model defines domain entities and error types for the task API.
//
// # Domain Entities
//
//   - User: account with credentials, active bearer tokens and optional avatar
//   - Task: task record owned by exactly one user
//
// Sensitive fields (password hash, token list, avatar bytes) carry `json:"-"`
// so they can never leak into an API response.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type   string `json:"type"`
//	    Title  string `json:"title"`
//	    Status int    `json:"status"`
//	    Detail string `json:"detail"`
//	}
//
// Constructors map the error taxonomy onto HTTP statuses: validation and
// conflict failures are 400, missing/revoked credentials are 401, missing or
// foreign-owned resources are 404, store failures are 500.
package model
