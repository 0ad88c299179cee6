package fetchgate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ristrettocache "github.com/ambiyansyah-risyal/fetchgate/cache/ristretto"
	"github.com/ambiyansyah-risyal/fetchgate/codec"
	"github.com/ambiyansyah-risyal/fetchgate/mock"
)

// Config is the file form of a client configuration:
//
//	base_url: http://localhost:7201
//	cache_ttl: 3s
//	timeout: 30s
//	codec: json
//	debug: false
//	cache:
//	  backend: ristretto
//	  ristretto:
//	    num_counters: 100000
//	    max_cost: 10000
//	    buffer_items: 64
//	mock:
//	  fixtures: fixtures.yaml
//
// When mock.fixtures is set the client answers from the fixture file instead
// of the network.
type Config struct {
	BaseURL  string      `yaml:"base_url"`
	CacheTTL string      `yaml:"cache_ttl"`
	Timeout  string      `yaml:"timeout"`
	Codec    string      `yaml:"codec"`
	Debug    bool        `yaml:"debug"`
	Cache    CacheConfig `yaml:"cache"`
	Mock     MockConfig  `yaml:"mock"`

	cacheTTL    time.Duration
	cacheTTLSet bool
	timeout     time.Duration
	dir         string
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend   string          `yaml:"backend"`
	Ristretto RistrettoConfig `yaml:"ristretto"`
}

// RistrettoConfig sizes the ristretto backend. Zero fields keep the defaults.
type RistrettoConfig struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
	BufferItems int64 `yaml:"buffer_items"`
}

// MockConfig points the client at a fixture file instead of the network.
type MockConfig struct {
	Fixtures string `yaml:"fixtures"`
}

var newRistrettoCache = ristrettocache.New

// LoadConfig reads and validates a YAML config file. A relative
// mock.fixtures path is resolved against the file's directory.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig decodes and validates YAML config bytes.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.CacheTTL != "" {
		d, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return Config{}, fmt.Errorf("cache_ttl: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("cache_ttl: must be non-negative")
		}
		cfg.cacheTTL = d
		cfg.cacheTTLSet = true
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("timeout: must be positive")
		}
		cfg.timeout = d
	}
	if _, err := codec.ByName(cfg.Codec); err != nil {
		return Config{}, fmt.Errorf("codec: %w", err)
	}
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	switch cfg.Cache.Backend {
	case "", "memory", "ristretto":
	default:
		return Config{}, fmt.Errorf("cache.backend: unknown backend %q", cfg.Cache.Backend)
	}

	return cfg, nil
}

// Options converts the config into client options. Building a ristretto
// cache or a fixture dispatcher can fail, hence the error.
func (cfg Config) Options() ([]Option, error) {
	var opts []Option
	var built *ristrettocache.Cache

	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.cacheTTLSet {
		opts = append(opts, WithCacheTTL(cfg.cacheTTL))
	}
	if cfg.timeout > 0 {
		opts = append(opts, WithTimeout(cfg.timeout))
	}

	cd, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithCodec(cd))

	if cfg.Debug {
		opts = append(opts, WithDebug())
	}

	if cfg.Cache.Backend == "ristretto" {
		rc := ristrettocache.DefaultConfig()
		if cfg.Cache.Ristretto.NumCounters > 0 {
			rc.NumCounters = cfg.Cache.Ristretto.NumCounters
		}
		if cfg.Cache.Ristretto.MaxCost > 0 {
			rc.MaxCost = cfg.Cache.Ristretto.MaxCost
		}
		if cfg.Cache.Ristretto.BufferItems > 0 {
			rc.BufferItems = cfg.Cache.Ristretto.BufferItems
		}
		c, err := newRistrettoCache(rc)
		if err != nil {
			return nil, fmt.Errorf("cache.ristretto: %w", err)
		}
		built = c
		opts = append(opts, WithCache(c))
	}

	if cfg.Mock.Fixtures != "" {
		p := cfg.Mock.Fixtures
		if !filepath.IsAbs(p) && cfg.dir != "" {
			p = filepath.Join(cfg.dir, p)
		}
		d, err := mock.LoadDispatcher(p)
		if err != nil {
			if built != nil {
				built.Close()
			}
			return nil, err
		}
		opts = append(opts, WithTransport(d))
	}

	return opts, nil
}

// NewFromConfig builds a client from a config file plus extra options,
// which are applied after the file's.
func NewFromConfig(path string, extra ...Option) (*Client, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...), nil
}
