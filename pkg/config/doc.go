// Package config provides configuration management for kallysto.
//
// Configuration is read from a YAML file, completed with defaults and
// optionally overridden from the environment:
//
//	cfg, err := config.LoadConfig("kallysto.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("kallysto.yaml")
//
// # Environment Variable Overrides
//
// Variables follow the convention KALLYSTO_SECTION_FIELD, for example
//
//   - KALLYSTO_PUBLICATION_TITLE overrides publication.title
//   - KALLYSTO_LEDGER_DRIVER overrides ledger.driver
//   - KALLYSTO_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation, which reports every invalid field at once
//
// The loaded Config is passed explicitly; there is no package-level copy.
package config
