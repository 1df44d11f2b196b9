// Package config loads, normalizes, and validates hawarun configuration.
//
// Settings come from an optional TOML file layered over repository defaults
// and a small set of environment overrides (HAWA_LAUNCHER_SOCKET,
// HAWA_LOG_LEVEL). The daemon socket location, connect/response timeouts, and
// logging format all flow through Config so the CLI never hard-codes them.
package config
