// internal/workers/eligibility/build-benefits-report/config.go
package buildbenefitsreport

import (
	"time"

	"advocacy-workers/internal/eligibility"
)

type Config struct {
	Timeout     time.Duration
	MinScore    int
	AverageOver int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		MinScore:    eligibility.DefaultMinScore,
		AverageOver: 3,
	}
}
