// Package config loads runtime configuration for otvetbot.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config; .yaml/.yml files are
//     decoded as YAML, everything else as JSON.
//  3. Environment: OTVETBOT_API_KEY, OTVETBOT_STORE_PASSPHRASE.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	store_path: accounts.db
//	store_kind: sqlite
//	poll_interval: 15s
//	backend: gemini
//	model: gemini-2.5-flash
//
// Secrets are deliberately absent from the file schema.
package config
