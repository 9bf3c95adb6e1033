package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/aasan/postgang/internal/domain"
)

const (
	defaultListen    = "127.0.0.1:8080"
	defaultRefresh   = "0 5 * * *"
	defaultCacheTTL  = 6 * time.Hour
	defaultCacheSize = 256
)

// ServeConfig settings of the feed server
type ServeConfig struct {
	// Listen HTTP listen address
	Listen string `yaml:"listen"`

	// Refresh cron schedule (standard 5 fields) for re-fetching Codes
	Refresh string `yaml:"refresh"`

	// Codes postal codes kept warm in the cache
	Codes []string `yaml:"codes"`

	// CacheTTL lifetime of a rendered feed, e.g. "6h"
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// CacheSize maximum number of cached feeds
	CacheSize int `yaml:"cache_size"`
}

// DefaultServeConfig in-memory defaults
func DefaultServeConfig() *ServeConfig {
	return &ServeConfig{
		Listen:    defaultListen,
		Refresh:   defaultRefresh,
		Codes:     []string{},
		CacheTTL:  defaultCacheTTL,
		CacheSize: defaultCacheSize,
	}
}

// Normalize fills zero values with defaults
func (c *ServeConfig) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Refresh == "" {
		c.Refresh = defaultRefresh
	}
	if c.Codes == nil {
		c.Codes = []string{}
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaultCacheSize
	}
}

// Validate checks the cron schedule and postal codes
func (c *ServeConfig) Validate() error {
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", c.Refresh, err)
	}
	for _, code := range c.Codes {
		if _, err := domain.ParsePostalCode(code); err != nil {
			return fmt.Errorf("invalid postal code %q in codes: %w", code, err)
		}
	}
	return nil
}

// PostalCodes parsed Codes; call Validate first
func (c *ServeConfig) PostalCodes() []domain.PostalCode {
	codes := make([]domain.PostalCode, 0, len(c.Codes))
	for _, raw := range c.Codes {
		if code, err := domain.ParsePostalCode(raw); err == nil {
			codes = append(codes, code)
		}
	}
	return codes
}

// LoadServe reads the YAML file at path.
//
// An empty path or a missing file yields the defaults. The result is normalized and validated.
func LoadServe(path string) (*ServeConfig, error) {
	cfg := DefaultServeConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read serve config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse serve config %s: %w", path, err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
