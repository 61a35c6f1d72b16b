package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel      = "info"
	DefaultJSONLog       = false
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 shelf/1.0"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultMode          = "auto"
	DefaultProxyCooldown = 5 * time.Minute

	DefaultBrowserHeadless = true
	DefaultSettleDelay     = 500 * time.Millisecond

	DefaultLimit = 20
	MinLimit     = 5
	MaxLimit     = 50

	DefaultRetries = 1

	DefaultAddr             = ":8080"
	DefaultSessionTTL       = 30 * time.Minute
	DefaultCollectRPS       = 0.5
	DefaultCollectBurst     = 2
	DefaultThrottleSessions = 4096
)
