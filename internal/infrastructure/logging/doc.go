// Package logging provides structured logging for HouseTally.
//
// It wraps Go's standard log/slog package so the whole application logs
// through one consistently configured logger.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Security
//
// Never log secrets, tokens, password hashes, or raw credentials. Auth
// handlers log usernames and token IDs (jti) only — never token strings.
package logging
