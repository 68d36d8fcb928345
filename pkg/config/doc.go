// Package config provides configuration management for the simparse service.
//
// Configuration is read from a YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("simparse.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SIMPARSE_SECTION_FIELD:
//
//   - SIMPARSE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - SIMPARSE_HISTORY_BACKEND overrides history.backend
//   - SIMPARSE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8090"
//	  default_format: "text"
//
//	library:
//	  enabled: true
//	  dir: "./rules"
//
//	history:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "data/history.db"
//
//	telemetry:
//	  logging:
//	    level: "debug"
//	    format: "text"
//
// # Singleton
//
// Initialize stores one Config for the process; GetConfig reads it. Prefer
// passing an explicit *Config in tests.
package config
