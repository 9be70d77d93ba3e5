// Package config loads, defaults, and validates the bilimux TOML
// configuration.
package config
