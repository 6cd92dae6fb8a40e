// Package database provides SQLite database connectivity for HouseTally.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations embedded in the binary
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//   - Password hashes are stored, never plaintext passwords
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files live under migrations/ and follow the naming scheme
// YYYYMMDD_HHMMSS_description.up.sql with a matching .down.sql for
// rollback. Each migration is applied in its own transaction.
package database
