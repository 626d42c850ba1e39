// Package config loads typed configuration structs from environment
// variables (github.com/caarlos0/env) with optional .env files
// (github.com/joho/godotenv). Every package of the service declares its own
// Config struct; cmd/summarist loads them with Load or MustLoad.
package config
