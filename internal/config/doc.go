// Package config loads client configuration from defaults, an optional YAML
// file and TRAQCHECK_-prefixed environment variables, and validates the
// result before any component is built from it.
package config
