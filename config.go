package authkit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyKind selects the deployment-time authentication strategy.
type StrategyKind string

const (
	// StrategyToken is the stateless access+refresh token strategy.
	StrategyToken StrategyKind = "token"
	// StrategySession is the stateful opaque-session strategy.
	StrategySession StrategyKind = "session"
)

// Config is the immutable configuration for the whole package. Construct
// it explicitly (or through LoadConfig), call Validate once, and pass it
// to New; nothing reads ambient global state afterwards.
type Config struct {
	Strategy StrategyKind

	// SigningSecret is base64-encoded symmetric key material for the
	// token codec. Decoded once at construction and never exposed.
	SigningSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration

	RedisPrefix string

	// Cookie names for the fallback credential locations.
	AccessCookie  string
	SessionCookie string

	// Gate exclusions: plain prefixes and "METHOD:regex" patterns.
	ExcludedPaths    []string
	ExcludedPatterns []string

	BcryptCost int

	Audit AuditConfig
}

// AuditConfig controls the audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Defaults returns the baseline configuration. The exclusion list covers
// the public endpoints of the community app: signup/login, credential
// lookup helpers, and the public post listing.
func Defaults() Config {
	return Config{
		Strategy:      StrategyToken,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		SessionTTL:    time.Hour,
		AccessCookie:  "access_token",
		SessionCookie: "sid",
		ExcludedPaths: []string{
			"/auth",
			"/auth/login",
			"/auth/consent",
			"/users/email",
			"/users/password",
		},
		ExcludedPatterns: []string{"GET:/posts$"},
		Audit:            AuditConfig{Enabled: true, BufferSize: 256, DropIfFull: true},
	}
}

// Validate checks the configuration and reports the first problem found.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyToken:
		if c.SigningSecret == "" {
			return errors.New("signing secret required for token strategy")
		}
		if _, err := c.secretBytes(); err != nil {
			return err
		}
		if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
			return errors.New("access and refresh TTLs must be positive")
		}
		if c.RefreshTTL < c.AccessTTL {
			return errors.New("refresh TTL shorter than access TTL")
		}
	case StrategySession:
		if c.SessionTTL <= 0 {
			return errors.New("session TTL must be positive")
		}
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}

	if c.AccessCookie == "" || c.SessionCookie == "" {
		return errors.New("cookie names must not be empty")
	}
	return nil
}

func (c *Config) secretBytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(c.SigningSecret)
	if err != nil {
		return nil, fmt.Errorf("signing secret is not valid base64: %w", err)
	}
	return raw, nil
}

// fileConfig mirrors Config for YAML decoding; durations travel as
// strings ("15m", "168h").
type fileConfig struct {
	Strategy         string      `yaml:"strategy"`
	SigningSecret    string      `yaml:"signing_secret"`
	AccessTTL        string      `yaml:"access_ttl"`
	RefreshTTL       string      `yaml:"refresh_ttl"`
	SessionTTL       string      `yaml:"session_ttl"`
	RedisPrefix      string      `yaml:"redis_prefix"`
	AccessCookie     string      `yaml:"access_cookie"`
	SessionCookie    string      `yaml:"session_cookie"`
	ExcludedPaths    []string    `yaml:"excluded_paths"`
	ExcludedPatterns []string    `yaml:"excluded_patterns"`
	BcryptCost       int         `yaml:"bcrypt_cost"`
	Audit            auditConfig `yaml:"audit"`
}

type auditConfig struct {
	Enabled    *bool `yaml:"enabled"`
	BufferSize int   `yaml:"buffer_size"`
	DropIfFull *bool `yaml:"drop_if_full"`
}

// LoadConfig layers configuration sources: built-in defaults, then an
// optional YAML file (explicit path, AUTHKIT_CONFIG, or ./authkit.yaml),
// then AUTHKIT_* environment overrides, then validation.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(path)
	if filePath != "" {
		if err := applyYAMLFile(filePath, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func discoverConfigFile(path string) string {
	if path != "" {
		return path
	}
	if envPath := os.Getenv("AUTHKIT_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("authkit.yaml"); err == nil {
		return "authkit.yaml"
	}
	return ""
}

func applyYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Strategy != "" {
		cfg.Strategy = StrategyKind(fc.Strategy)
	}
	if fc.SigningSecret != "" {
		cfg.SigningSecret = fc.SigningSecret
	}
	if err := setDuration(&cfg.AccessTTL, fc.AccessTTL, "access_ttl"); err != nil {
		return err
	}
	if err := setDuration(&cfg.RefreshTTL, fc.RefreshTTL, "refresh_ttl"); err != nil {
		return err
	}
	if err := setDuration(&cfg.SessionTTL, fc.SessionTTL, "session_ttl"); err != nil {
		return err
	}
	if fc.RedisPrefix != "" {
		cfg.RedisPrefix = fc.RedisPrefix
	}
	if fc.AccessCookie != "" {
		cfg.AccessCookie = fc.AccessCookie
	}
	if fc.SessionCookie != "" {
		cfg.SessionCookie = fc.SessionCookie
	}
	if fc.ExcludedPaths != nil {
		cfg.ExcludedPaths = fc.ExcludedPaths
	}
	if fc.ExcludedPatterns != nil {
		cfg.ExcludedPatterns = fc.ExcludedPatterns
	}
	if fc.BcryptCost != 0 {
		cfg.BcryptCost = fc.BcryptCost
	}
	if fc.Audit.Enabled != nil {
		cfg.Audit.Enabled = *fc.Audit.Enabled
	}
	if fc.Audit.BufferSize != 0 {
		cfg.Audit.BufferSize = fc.Audit.BufferSize
	}
	if fc.Audit.DropIfFull != nil {
		cfg.Audit.DropIfFull = *fc.Audit.DropIfFull
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("AUTHKIT_STRATEGY"); v != "" {
		cfg.Strategy = StrategyKind(v)
	}
	if v := os.Getenv("AUTHKIT_SIGNING_SECRET"); v != "" {
		cfg.SigningSecret = v
	}
	if v := os.Getenv("AUTHKIT_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTHKIT_ACCESS_TTL: %w", err)
		}
		cfg.AccessTTL = d
	}
	if v := os.Getenv("AUTHKIT_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTHKIT_REFRESH_TTL: %w", err)
		}
		cfg.RefreshTTL = d
	}
	if v := os.Getenv("AUTHKIT_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTHKIT_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("AUTHKIT_REDIS_PREFIX"); v != "" {
		cfg.RedisPrefix = v
	}
	if v := os.Getenv("AUTHKIT_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTHKIT_BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = cost
	}
	return nil
}

func setDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
