package validators

// Config holds configuration for validator synchronization.
type Config struct {
	// AutoSyncEnabled is the initial state of the core schema auto-sync toggle.
	AutoSyncEnabled bool `mapstructure:"auto_sync_enabled" default:"false"`
	// CoreCron schedules the core schema sync. Empty disables the job.
	CoreCron string `mapstructure:"core_cron" default:"0 */30 * * * *"`
	// ManagerCron schedules the validator manager schema sync. Empty disables the job.
	ManagerCron string `mapstructure:"manager_cron" default:"0 */30 * * * *"`
	// LockTTLSeconds bounds how long a sync may hold its lock.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"600"`
}
