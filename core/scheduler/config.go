package scheduler

// Config holds configuration for the job scheduler.
type Config struct {
	// Enabled starts the scheduler together with the HTTP server.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// RunTimeoutSeconds bounds a single job run.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds" default:"300"`
}
