// Package rbxcord embeds the annotated default configuration.
//
// The root package exists solely to embed config.default.toml via
// [DefaultConfigTOML], which the daemon writes to the data directory on
// first run.
package rbxcord

import _ "embed"

// DefaultConfigTOML holds config.default.toml as generated by cmd/genconfig.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
