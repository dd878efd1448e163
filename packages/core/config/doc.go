// Package config handles configuration loading and management for curlite.
//
// It provides functionality for:
//   - Loading configuration from .curlite.json or .curlite.yaml files
//   - Default configuration values
//   - Merging command-line overrides over file settings
//   - Translating settings into client options
package config
