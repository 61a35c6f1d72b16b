package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateAbsolute checks that a URL has a scheme and a host.
// Any scheme is accepted.
func ValidateAbsolute(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("invalid URL: missing scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}
	return nil
}

// ValidateURL additionally restricts the scheme to http or https. Used for
// URLs typed by users.
func ValidateURL(urlStr string) error {
	if err := ValidateAbsolute(urlStr); err != nil {
		return err
	}
	parsed, _ := url.Parse(urlStr)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}
	return nil
}

// Normalize trims the input and assumes https when no scheme was typed
func Normalize(urlStr string) string {
	s := strings.TrimSpace(urlStr)
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	return s
}
