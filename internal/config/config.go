package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/law-makers/shelf/internal/extract"
	"github.com/law-makers/shelf/internal/proxy"
	"github.com/law-makers/shelf/internal/utils/headers"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`
	Quiet    bool   `yaml:"-"`

	// Fetching
	HTTPTimeout   time.Duration     `yaml:"timeout"`
	UserAgent     string            `yaml:"user_agent"`
	Proxies       []string          `yaml:"proxies"`
	ProxyCooldown time.Duration     `yaml:"proxy_cooldown"`
	Mode          string            `yaml:"mode"`
	Retries       int               `yaml:"retries"`
	Headers       map[string]string `yaml:"headers"`

	Browser   BrowserConfig     `yaml:"browser"`
	Selectors extract.Selectors `yaml:"selectors"`
	Limits    LimitConfig       `yaml:"limits"`
	Server    ServerConfig      `yaml:"server"`
}

// BrowserConfig controls the headless Chrome fetcher
type BrowserConfig struct {
	Headless     bool          `yaml:"headless"`
	ChromePath   string        `yaml:"chrome_path"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	WaitSelector string        `yaml:"wait_selector"`
}

// LimitConfig bounds the number of products a user may request
type LimitConfig struct {
	Default int `yaml:"default"`
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
}

// ServerConfig controls the dashboard server
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	CollectRPS       float64       `yaml:"collect_rps"`
	CollectBurst     int           `yaml:"collect_burst"`
	ThrottleSessions int           `yaml:"throttle_sessions"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		HTTPTimeout:   DefaultHTTPTimeout,
		UserAgent:     DefaultUserAgent,
		ProxyCooldown: DefaultProxyCooldown,
		Mode:          DefaultMode,
		Retries:       DefaultRetries,
		Browser: BrowserConfig{
			Headless:    DefaultBrowserHeadless,
			SettleDelay: DefaultSettleDelay,
		},
		Selectors: extract.DefaultSelectors(),
		Limits: LimitConfig{
			Default: DefaultLimit,
			Min:     MinLimit,
			Max:     MaxLimit,
		},
		Server: ServerConfig{
			Addr:             DefaultAddr,
			SessionTTL:       DefaultSessionTTL,
			CollectRPS:       DefaultCollectRPS,
			CollectBurst:     DefaultCollectBurst,
			ThrottleSessions: DefaultThrottleSessions,
		},
	}
}

// Load builds a Config by combining defaults, an optional YAML file,
// environment variables and CLI flags, in that order.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if path := flagString(cmd, "config"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return c.decode(f)
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SHELF_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SHELF_PROXY"); v != "" {
		c.Proxies = proxy.ParseList(v)
	}
	if v := os.Getenv("SHELF_CHROME_PATH"); v != "" {
		c.Browser.ChromePath = v
	}
	if v := os.Getenv("SHELF_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) applyFlags(cmd *cobra.Command) error {
	if s := flagString(cmd, "user-agent"); s != "" {
		c.UserAgent = s
	}
	if s := flagString(cmd, "proxy"); s != "" {
		c.Proxies = proxy.ParseList(s)
	}
	if s := flagString(cmd, "timeout"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid --timeout %q: %w", s, err)
		}
		c.HTTPTimeout = d
	}
	if flagBool(cmd, "json") {
		c.JSONLog = true
	}
	if flagBool(cmd, "verbose") {
		c.LogLevel = "debug"
	}
	if flagBool(cmd, "quiet") {
		c.Quiet = true
		c.LogLevel = "error"
	}
	if s := flagString(cmd, "mode"); s != "" {
		c.Mode = s
	}
	if s := flagString(cmd, "addr"); s != "" {
		c.Server.Addr = s
	}
	if list, err := cmd.Flags().GetStringArray("header"); err == nil && len(list) > 0 {
		parsed, err := headers.ParseHeaders(list)
		if err != nil {
			return err
		}
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range parsed {
			c.Headers[k] = v
		}
	}
	if f := cmd.Flags().Lookup("retries"); f != nil && f.Changed {
		n, err := strconv.Atoi(f.Value.String())
		if err != nil {
			return fmt.Errorf("invalid --retries: %w", err)
		}
		c.Retries = n
	}
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	return flagString(cmd, name) == "true"
}
