package source

// Config holds configuration for configuration document sources.
type Config struct {
	// ValidatorsLocation is the location of the validators document.
	ValidatorsLocation string `mapstructure:"validators_location" default:"validators.yaml"`
	// SubnetsLocation is the location of the subnets document.
	SubnetsLocation string `mapstructure:"subnets_location" default:"subnets.yaml"`
	// HTTPTimeoutSeconds bounds a single HTTP fetch.
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds" default:"10"`
	// HTTPRetryCount is the number of retries after a failed HTTP fetch.
	HTTPRetryCount int `mapstructure:"http_retry_count" default:"2"`
	// CacheTTLSeconds is how long read-only views reuse a fetched document.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
	// GithubToken is sent as "Authorization: token ..." to GitHub hosts.
	GithubToken string `mapstructure:"github_token" default:""`
}
