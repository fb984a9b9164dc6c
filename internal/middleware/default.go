package middleware

import (
	"github.com/cs-tungthanh/fcc-microservices/internal/config"
	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
)

// Default builds the middleware stack shared by every service: request id,
// panic recovery, access log, CORS and, when enabled, the rate limiter.
// The returned stop func releases the rate limiter's cleanup goroutine.
func Default(cfg *config.Config, log *logger.Logger) ([]Middleware, func()) {
	middlewares := []Middleware{
		RequestID,
		RecoveryWithLogger(log),
		LoggingWithLogger(log),
		CORS(cfg.CORS.AllowedOrigin),
	}
	if !cfg.RateLimit.Enabled {
		return middlewares, func() {}
	}

	rl := NewRateLimiter(RateLimiterConfig{
		Rate:     cfg.RateLimit.Rate,
		Burst:    cfg.RateLimit.Burst,
		Interval: cfg.RateLimit.Interval,
		Cleanup:  cfg.RateLimit.Cleanup,
	}, log)
	log.Info("rate limiter enabled", "rate", cfg.RateLimit.Rate, "burst", cfg.RateLimit.Burst)

	return append(middlewares, rl.Middleware()), rl.Stop
}
