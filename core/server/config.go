package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// DefaultSchema is used when a request omits the schema parameter (core, validator_manager).
	DefaultSchema string `mapstructure:"default_schema" default:"core"`
	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"10"`
}

const (
	SchemaCore             = "core"
	SchemaValidatorManager = "validator_manager"
)

// IsValidSchema checks if the configured default schema is valid.
func (c Config) IsValidSchema() bool {
	switch c.DefaultSchema {
	case SchemaCore, SchemaValidatorManager:
		return true
	default:
		return false
	}
}
