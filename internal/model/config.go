package model

import "time"

// FailurePolicy decides what a document fetch failure does to the run
type FailurePolicy string

const (
	// FailureAbort terminates the run on the first fetch failure without
	// exporting anything
	FailureAbort FailurePolicy = "abort"
	// FailureSkip logs the failure and continues with the next project
	FailureSkip FailurePolicy = "skip"
)

// Config holds all runtime settings
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Run          RunConfig          `yaml:"run" mapstructure:"run"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls the document fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig controls the page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitingConfig controls request pacing per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// RunConfig controls the scrape loop
type RunConfig struct {
	FailurePolicy FailurePolicy `yaml:"failure_policy" mapstructure:"failure_policy"`
	ProgressEvery int           `yaml:"progress_every" mapstructure:"progress_every"`
}

// OutputConfig controls output files and console output
type OutputConfig struct {
	File        string `yaml:"file" mapstructure:"file"`                 // Empty means the site default
	InvalidFile string `yaml:"invalid_file" mapstructure:"invalid_file"` // Empty disables
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "fundscrape/0.1 (+https://github.com/ppiankov/fundscrape)",
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".fundscrape-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         1,
		},
		Run: RunConfig{
			FailurePolicy: FailureAbort,
			ProgressEvery: 100,
		},
		Output: OutputConfig{
			InvalidFile: "invalid.txt",
		},
	}
}
