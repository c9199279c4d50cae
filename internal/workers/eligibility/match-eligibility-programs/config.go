// internal/workers/eligibility/match-eligibility-programs/config.go
package matcheligibilityprograms

import (
	"time"

	"advocacy-workers/internal/eligibility"
)

type Config struct {
	Timeout          time.Duration
	CacheTTL         time.Duration
	MinScore         int
	TopN             int
	AverageOver      int
	StrictValidation bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     15 * time.Second,
		CacheTTL:    10 * time.Minute,
		MinScore:    eligibility.DefaultMinScore,
		AverageOver: 3,
	}
}
