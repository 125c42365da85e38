// Package config loads application configuration from environment variables
// (prefix IDA) merged over an optional YAML config file, and resolves the
// filesystem layout relative to the executable directory.
package config
