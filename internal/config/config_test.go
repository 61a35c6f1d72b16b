package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	cmd.Flags().String("mode", "", "")
	cmd.Flags().String("addr", "", "")
	cmd.Flags().Int("retries", 1, "")
	cmd.Flags().StringArrayP("header", "H", nil, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("Expected timeout %v, got %v", DefaultHTTPTimeout, cfg.HTTPTimeout)
	}
	if cfg.Limits.Default != 20 || cfg.Limits.Min != 5 || cfg.Limits.Max != 50 {
		t.Errorf("Unexpected limits %+v", cfg.Limits)
	}
	if cfg.Selectors.Card != ".product-card" {
		t.Errorf("Expected default card selector, got %s", cfg.Selectors.Card)
	}
	if cfg.Server.SessionTTL != 30*time.Minute {
		t.Errorf("Expected 30m session ttl, got %v", cfg.Server.SessionTTL)
	}
}

func TestLoad_Flags(t *testing.T) {
	cmd := newCmd(t, "--timeout", "5s", "--proxy", "http://a:1,http://b:2", "-v", "--mode", "static", "--retries", "3")

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %v", cfg.HTTPTimeout)
	}
	if len(cfg.Proxies) != 2 {
		t.Errorf("Expected 2 proxies, got %v", cfg.Proxies)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug, got %s", cfg.LogLevel)
	}
	if cfg.Mode != "static" {
		t.Errorf("Expected static mode, got %s", cfg.Mode)
	}
	if cfg.Retries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.Retries)
	}
}

func TestLoad_Headers(t *testing.T) {
	cfg, err := Load(newCmd(t, "-H", "X-Token: abc", "--header", "Accept-Language: de"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Headers["X-Token"] != "abc" || cfg.Headers["Accept-Language"] != "de" {
		t.Errorf("Unexpected headers %v", cfg.Headers)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SHELF_USER_AGENT", "env-agent")
	t.Setenv("SHELF_ADDR", ":9999")

	cfg, err := Load(newCmd(t))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.UserAgent != "env-agent" {
		t.Errorf("Expected env user agent, got %s", cfg.UserAgent)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Expected :9999, got %s", cfg.Server.Addr)
	}

	cfg, _ = Load(newCmd(t, "--user-agent", "flag-agent"))
	if cfg.UserAgent != "flag-agent" {
		t.Errorf("Expected flag to win over env, got %s", cfg.UserAgent)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.yaml")
	content := `
timeout: 12s
mode: spa
selectors:
  card: li.item
browser:
  settle_delay: 1s
server:
  session_ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(newCmd(t, "--config", path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != 12*time.Second {
		t.Errorf("Expected 12s, got %v", cfg.HTTPTimeout)
	}
	if cfg.Mode != "spa" {
		t.Errorf("Expected spa, got %s", cfg.Mode)
	}
	if cfg.Selectors.Card != "li.item" || cfg.Selectors.Price != ".product-price" {
		t.Errorf("Expected merged selectors, got %+v", cfg.Selectors)
	}
	if cfg.Browser.SettleDelay != time.Second || !cfg.Browser.Headless {
		t.Errorf("Unexpected browser config %+v", cfg.Browser)
	}
	if cfg.Server.SessionTTL != time.Hour {
		t.Errorf("Expected 1h, got %v", cfg.Server.SessionTTL)
	}
}

func TestLoad_FileUnknownKey(t *testing.T) {
	cfg := Default()
	err := cfg.decode(strings.NewReader("tiemout: 3s\n"))
	if err == nil {
		t.Error("Expected error for unknown key")
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load(newCmd(t, "--mode", "turbo")); err == nil {
		t.Error("Expected error for unknown mode")
	}
	if _, err := Load(newCmd(t, "--timeout", "soon")); err == nil {
		t.Error("Expected error for bad timeout")
	}
	if _, err := Load(newCmd(t, "-H", "NoColon")); err == nil {
		t.Error("Expected error for malformed header")
	}
	if _, err := Load(newCmd(t, "--retries", "0")); err == nil {
		t.Error("Expected error for zero retries")
	}
}

func TestCheckLimit(t *testing.T) {
	cfg := Default()
	for _, n := range []int{5, 20, 50} {
		if err := cfg.CheckLimit(n); err != nil {
			t.Errorf("Expected %d to be allowed: %v", n, err)
		}
	}
	for _, n := range []int{0, 4, 51} {
		if err := cfg.CheckLimit(n); err == nil {
			t.Errorf("Expected %d to be rejected", n)
		}
	}
}
