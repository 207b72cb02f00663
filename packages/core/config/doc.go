// Package config handles configuration loading and management for stripcheck.
//
// It provides functionality for:
//   - Loading configuration from stripcheck.yaml or stripcheck.json files
//   - Default configuration values, including the DOM selectors of the application under test
//   - Merging file values with command-line overrides
package config
