// internal/workers/pricing/record-case-pricing/config.go
package recordcasepricing

import "time"

type Config struct {
	Timeout time.Duration
	Actor   string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Actor:   TaskType,
	}
}
