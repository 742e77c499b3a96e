// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIURL          string        `mapstructure:"api_url"`
	IconBaseURL     string        `mapstructure:"icon_base_url"`
	IconRoot        string        `mapstructure:"icon_root"`
	IconCacheSize   int           `mapstructure:"icon_cache_size"`
	SnapshotPath    string        `mapstructure:"snapshot_path"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	Retries         int           `mapstructure:"retries"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	ListenAddr      string        `mapstructure:"listen_addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	LogFile         string        `mapstructure:"log_file"`
	DebugLogging    bool          `mapstructure:"debug_logging"`
	ShowEOL         bool          `mapstructure:"show_eol"`
	MinimumTVL      float64       `mapstructure:"minimum_tvl"`
	Chains          []string      `mapstructure:"chains"`
	ExportDir       string        `mapstructure:"export_dir"`
}

const (
	DefaultAPIURL          = "https://api.beefy.finance"
	DefaultIconBaseURL     = "https://app.beefy.com"
	DefaultIconCacheSize   = 8192
	DefaultSnapshotPath    = "vaults.db"
	DefaultRefreshInterval = 5 * time.Minute
	DefaultRequestTimeout  = 15 * time.Second
	DefaultRetries         = 3
	DefaultRateLimit       = 5.0
	DefaultListenAddr      = ":8080"
	DefaultLogFile         = "vaults.log"
	DefaultExportDir       = "exports"
)

// LoadConfig reads the file at path on top of the defaults and applies
// VAULTS_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"api_url":          DefaultAPIURL,
		"icon_base_url":    DefaultIconBaseURL,
		"icon_root":        "",
		"icon_cache_size":  DefaultIconCacheSize,
		"snapshot_path":    DefaultSnapshotPath,
		"refresh_interval": DefaultRefreshInterval,
		"request_timeout":  DefaultRequestTimeout,
		"retries":          DefaultRetries,
		"rate_limit":       DefaultRateLimit,
		"listen_addr":      DefaultListenAddr,
		"cors_origins":     []string{"*"},
		"log_file":         DefaultLogFile,
		"debug_logging":    false,
		"show_eol":         false,
		"minimum_tvl":      0.0,
		"chains":           []string{},
		"export_dir":       DefaultExportDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	bindEnvironment(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Chains = cleanList(cfg.Chains)
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.APIURL == "" {
		return errors.New("missing api_url in configuration")
	}
	if err := validateURLWithCache(cfg.APIURL, "http"); err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if cfg.IconRoot == "" && cfg.IconBaseURL != "" {
		if err := validateURLWithCache(cfg.IconBaseURL, "http"); err != nil {
			return fmt.Errorf("invalid icon_base_url: %w", err)
		}
	}
	if cfg.SnapshotPath == "" {
		return errors.New("missing snapshot_path in configuration")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.IconCacheSize <= 0 {
		return errors.New("invalid icon_cache_size")
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("invalid request_timeout")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("invalid rate_limit")
	}
	if cfg.MinimumTVL < 0 {
		return errors.New("invalid minimum_tvl")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// bindEnvironment lets VAULTS_API_URL, VAULTS_CHAINS and friends override the
// file. Every key has a default, so Unmarshal sees the overrides.
func bindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix("VAULTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}
