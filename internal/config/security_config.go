package config

import "time"

type SecurityConfig interface {
	GetEnableRateLimiting() bool
	GetRateLimit() float64
	GetRateBurst() int
	GetRateLimitCacheSize() int
	GetRateLimitTTL() time.Duration
}

type Security struct {
	src *source
}

var _ SecurityConfig = Security{}

func (s Security) GetEnableRateLimiting() bool {
	return s.src.get("RATE_LIMIT_ENABLED", "true") == "true"
}

// GetRateLimit is the sustained requests per second allowed per client IP.
func (s Security) GetRateLimit() float64 {
	return s.src.getFloat("RATE_LIMIT_RPS", 10)
}

func (s Security) GetRateBurst() int {
	return s.src.getInt("RATE_LIMIT_BURST", 20)
}

func (s Security) GetRateLimitCacheSize() int {
	return s.src.getInt("RATE_LIMIT_CACHE_SIZE", 4096)
}

func (s Security) GetRateLimitTTL() time.Duration {
	return s.src.getDuration("RATE_LIMIT_TTL", 3*time.Minute)
}
