// Package config loads YAML configuration files into ordered
// collections with optional environment variable overrides.
package config
