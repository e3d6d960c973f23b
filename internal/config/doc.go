// Package config loads the dashboard configuration.
//
// Values are resolved in this order, later sources winning:
//
//	1. Default()
//	2. a YAML file (config.yaml, configs/config.yaml, or an explicit path)
//	3. a .env file in the working directory, if present
//	4. environment variables prefixed SCORECARD_
//
// Environment keys follow the struct layout, for example
// SCORECARD_SERVER_PORT, SCORECARD_INPUT_FILE or SCORECARD_CACHE_TTL.
// The merged result is checked with go-playground/validator before use.
package config
