// Package config loads application settings from the environment and an optional .env file.
//
// Every field of the section structs declares its key with a mapstructure tag
// and its default with a default tag. bindValues registers each key with Viper
// so that nested keys are reachable through environment variables:
// SERVER_PORT sets server.port, SOURCE_VALIDATORS_LOCATION sets
// source.validators_location.
//
// # Sections
//
//   - Server: port, API key, default schema
//   - Database: driver (mysql, sqlite) and connection details
//   - Storage: S3/MinIO credentials for s3:// document locations
//   - Log: level and format
//   - Source: document locations, HTTP timeout and retries, cache TTL, GitHub token
//   - Sync: auto-sync default and cron specs
//   - Redis: distributed sync lock
//   - Scheduler: periodic job runner
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Source.ValidatorsLocation)
package config
