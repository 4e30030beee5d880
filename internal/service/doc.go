// Package service implements the business logic layer.
//
// Services hold all domain rules: credential and input validation, the
// token session model, update field whitelists, avatar normalization and
// the account deletion cascade. Handlers stay thin and repositories stay
// mechanical; everything with a decision in it lives here.
//
// Services define their own repository interfaces so they can be unit
// tested against hand-written mocks and stay decoupled from the SurrealDB
// implementations.
//
// Errors are returned as sentinel values declared in errors.go; handlers
// translate them to HTTP problem responses with errors.Is.
package service
