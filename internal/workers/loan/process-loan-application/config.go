// internal/workers/loan/process-loan-application/config.go
package processloanapplication

import "time"

type Config struct {
	// Timeout bounds one job end to end: fetch, extraction with retries, persistence.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Minute,
	}
}
