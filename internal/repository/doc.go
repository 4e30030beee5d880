// Package repository contains data access implementations backed by SurrealDB.
//
// Repositories translate between SurrealDB's wire shapes and the domain
// models, and own all SurrealQL. Task access is owner-scoped at the query
// level so a caller can never observe another user's records.
package repository
