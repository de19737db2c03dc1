// Package config loads and validates the submux TOML configuration.
//
// Configuration resolution is layered: repository defaults, then the config
// file (explicit path or the per-user default location), then environment
// and CLI flags applied by the caller. Paths support ~ expansion and are
// normalized to absolute form during load.
package config
