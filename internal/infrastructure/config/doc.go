// Package config handles loading and validation of HouseTally configuration.
//
// Configuration is loaded from a YAML file with environment variable
// overrides for deployment-specific and secret values:
//
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern HOUSETALLY_SECTION_KEY, for
// example HOUSETALLY_DATABASE_PATH or HOUSETALLY_JWT_SECRET.
//
// The JWT signing secret is never given a default. It must be provided
// via the config file or HOUSETALLY_JWT_SECRET, and must be at least 32
// bytes long; Load fails otherwise.
package config
