// Package config loads the service settings from config.yaml, a .env file
// and UMT_* environment variables and validates them.
package config
