// internal/workers/pricing/calculate-case-price/config.go
package calculatecaseprice

import "time"

type Config struct {
	Timeout          time.Duration
	StrictValidation bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
