// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tags). Every parsed configuration type
// is cached for the lifetime of the process, so packages can call Load for
// the same struct from many places without re-parsing:
//
//	var api fetch.Config
//	config.MustLoad(&api)
//
// Failed parses are not cached; fixing the environment and calling Load again
// succeeds. ResetCache clears everything and exists for tests.
package config
