// internal/workers/recommendation/rank-recommendations/config.go
package rankrecommendations

import "time"

type Config struct {
	Timeout     time.Duration
	DefaultTopN int
	MaxTopN     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		DefaultTopN: 10,
		MaxTopN:     50,
	}
}
