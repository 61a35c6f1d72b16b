package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	switch c.Mode {
	case "auto", "static", "spa":
	default:
		return fmt.Errorf("mode must be one of auto, static, spa; got %q", c.Mode)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be >= 1 (1 means no retry)")
	}
	if c.Browser.SettleDelay < 0 {
		return fmt.Errorf("browser settle delay must be >= 0")
	}
	if c.Limits.Min <= 0 || c.Limits.Min > c.Limits.Max {
		return fmt.Errorf("limit bounds must satisfy 0 < min <= max, got [%d, %d]", c.Limits.Min, c.Limits.Max)
	}
	if c.Limits.Default < c.Limits.Min || c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("default limit %d outside [%d, %d]", c.Limits.Default, c.Limits.Min, c.Limits.Max)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("session ttl must be >= 0")
	}
	if c.Server.CollectRPS < 0 || (c.Server.CollectRPS > 0 && c.Server.CollectBurst <= 0) {
		return fmt.Errorf("collect throttle needs rps >= 0 and a positive burst")
	}
	if c.Server.ThrottleSessions <= 0 {
		return fmt.Errorf("throttle sessions must be > 0")
	}
	return nil
}

// CheckLimit reports whether n is an allowed product limit
func (c *Config) CheckLimit(n int) error {
	return c.Limits.Check(n)
}

// Check reports whether n lies within [Min, Max]
func (l LimitConfig) Check(n int) error {
	if n < l.Min || n > l.Max {
		return fmt.Errorf("limit must be between %d and %d, got %d", l.Min, l.Max, n)
	}
	return nil
}
