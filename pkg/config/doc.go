// Package config loads typed configuration structs from the environment.
//
// Fields are described with github.com/caarlos0/env/v11 tags. Before the first
// load the package reads a `.env` file from the working directory through
// github.com/joho/godotenv, if one exists. Each struct type is parsed once and
// cached for the lifetime of the process:
//
//	var cfg checkout.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Reset drops the cache and is meant for tests.
package config
