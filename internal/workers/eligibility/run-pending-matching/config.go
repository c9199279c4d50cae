// internal/workers/eligibility/run-pending-matching/config.go
package runpendingmatching

import (
	"time"

	"advocacy-workers/internal/eligibility"
)

type Config struct {
	Timeout     time.Duration
	BatchSize   int
	MinScore    int
	AverageOver int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     5 * time.Minute,
		BatchSize:   100,
		MinScore:    eligibility.DefaultMinScore,
		AverageOver: 3,
	}
}
