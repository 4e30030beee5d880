// Package config manages application configuration for the task API.
//
// Configuration is parsed from environment variables into a nested Config
// struct via caarlos0/env struct tags and validated once at startup.
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - AuthConfig: token signing secret and lifetime
//   - EmailConfig: SES settings for account emails
//
// # Key Environment Variables
//
//	SERVER_PORT        - HTTP server port (default: 8080)
//	DB_HOST, DB_PORT   - SurrealDB endpoint
//	DB_NAMESPACE       - Database namespace
//	DB_DATABASE        - Database name
//	JWT_SECRET         - Token signing secret (required)
//	TOKEN_TTL          - Bearer token lifetime (default: 48h)
//	EMAIL_ENABLED      - Enable SES account emails (default: false)
package config
