package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays configuration values from environment variables onto the
// provided Config. Variables that are unset leave the current values
// untouched. Parsing failures (e.g. a malformed duration) panic, matching
// the JSON and flag loaders.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
