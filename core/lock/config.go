package lock

// Config holds configuration for the Redis lease backend.
type Config struct {
	// Enabled selects the Redis backend instead of the in-process one.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Host is the Redis host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the Redis port.
	Port int `mapstructure:"port" default:"6379"`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database number.
	DB int `mapstructure:"db" default:"0"`
	// Prefix is prepended to every lock key.
	Prefix string `mapstructure:"prefix" default:"auto-validator:lock:"`
}
