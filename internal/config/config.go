package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the flow probe harness.
type Config struct {
	BaseURL        string
	Origin         string
	Target         string
	RequestTimeout time.Duration
	TurnDelay      time.Duration
	RetryAttempts  int

	ReplyPreviewChars int
	StrictExit        bool
	Color             bool

	MetricsNamespace string
	DatabaseURL      string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BaseURL:           envOrDefault("FLOWPROBE_BASE_URL", "http://localhost:3001"),
		Origin:            strings.TrimSpace(os.Getenv("FLOWPROBE_ORIGIN")),
		Target:            envOrDefault("FLOWPROBE_TARGET", "live"),
		MetricsNamespace:  envOrDefault("FLOWPROBE_METRICS_NAMESPACE", "flowprobe"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RequestTimeout:    15 * time.Second,
		TurnDelay:         500 * time.Millisecond,
		RetryAttempts:     2,
		ReplyPreviewChars: 100,
		StrictExit:        true,
		Color:             true,
	}

	var err error
	cfg.RequestTimeout, err = durationFromEnv("FLOWPROBE_REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TurnDelay, err = durationFromEnv("FLOWPROBE_TURN_DELAY", cfg.TurnDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryAttempts, err = intFromEnv("FLOWPROBE_RETRY_ATTEMPTS", cfg.RetryAttempts)
	if err != nil {
		return Config{}, err
	}
	cfg.ReplyPreviewChars, err = intFromEnv("FLOWPROBE_REPLY_PREVIEW_CHARS", cfg.ReplyPreviewChars)
	if err != nil {
		return Config{}, err
	}
	cfg.StrictExit, err = boolFromEnv("FLOWPROBE_STRICT_EXIT", cfg.StrictExit)
	if err != nil {
		return Config{}, err
	}
	cfg.Color, err = boolFromEnv("FLOWPROBE_COLOR", cfg.Color)
	if err != nil {
		return Config{}, err
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("FLOWPROBE_BASE_URL must not be empty")
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Config{}, fmt.Errorf("FLOWPROBE_BASE_URL must be an http(s) URL, got %q", cfg.BaseURL)
	}
	// The service under test checks the Origin header, so mirror the base URL by default.
	if cfg.Origin == "" {
		cfg.Origin = cfg.BaseURL
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Target)) {
	case "live":
		cfg.Target = "live"
	case "mock":
		cfg.Target = "mock"
	default:
		return Config{}, fmt.Errorf("invalid FLOWPROBE_TARGET: %q (expected live|mock)", cfg.Target)
	}

	if cfg.RequestTimeout < time.Second {
		return Config{}, fmt.Errorf("FLOWPROBE_REQUEST_TIMEOUT must be at least 1s")
	}
	if cfg.TurnDelay < 0 {
		return Config{}, fmt.Errorf("FLOWPROBE_TURN_DELAY must not be negative")
	}
	if cfg.RetryAttempts < 0 {
		return Config{}, fmt.Errorf("FLOWPROBE_RETRY_ATTEMPTS must not be negative")
	}
	if cfg.ReplyPreviewChars <= 0 {
		return Config{}, fmt.Errorf("FLOWPROBE_REPLY_PREVIEW_CHARS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
