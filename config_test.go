package authkit

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validTokenConfig() Config {
	cfg := Defaults()
	cfg.SigningSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Strategy != StrategyToken {
		t.Fatalf("default strategy = %q", cfg.Strategy)
	}
	if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("default TTLs = %v / %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.AccessCookie != "access_token" || cfg.SessionCookie != "sid" {
		t.Fatalf("default cookies = %q / %q", cfg.AccessCookie, cfg.SessionCookie)
	}
	if len(cfg.ExcludedPaths) == 0 || len(cfg.ExcludedPatterns) == 0 {
		t.Fatal("default exclusions missing")
	}
	want := []string{"/auth", "/auth/login", "/auth/consent", "/users/email", "/users/password"}
	for i, path := range want {
		if cfg.ExcludedPaths[i] != path {
			t.Fatalf("ExcludedPaths = %v, want %v", cfg.ExcludedPaths, want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := validTokenConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid token config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.SigningSecret = "" }},
		{"bad base64 secret", func(c *Config) { c.SigningSecret = "not base64!!!" }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"refresh shorter than access", func(c *Config) { c.RefreshTTL = c.AccessTTL / 2 }},
		{"unknown strategy", func(c *Config) { c.Strategy = "ldap" }},
		{"empty cookie name", func(c *Config) { c.AccessCookie = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTokenConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	session := Defaults()
	session.Strategy = StrategySession
	if err := session.Validate(); err != nil {
		t.Fatalf("valid session config rejected: %v", err)
	}
	session.SessionTTL = 0
	if err := session.Validate(); err == nil {
		t.Fatal("expected error for zero session TTL")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	path := filepath.Join(t.TempDir(), "authkit.yaml")
	content := `
strategy: token
signing_secret: ` + secret + `
access_ttl: 5m
refresh_ttl: 48h
redis_prefix: myapp
excluded_paths:
  - /public
audit:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != 48*time.Hour {
		t.Fatalf("TTLs = %v / %v", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.RedisPrefix != "myapp" {
		t.Fatalf("RedisPrefix = %q", cfg.RedisPrefix)
	}
	if len(cfg.ExcludedPaths) != 1 || cfg.ExcludedPaths[0] != "/public" {
		t.Fatalf("ExcludedPaths = %v", cfg.ExcludedPaths)
	}
	if cfg.Audit.Enabled {
		t.Fatal("audit should be disabled by file")
	}
	// Untouched fields keep their defaults.
	if cfg.AccessCookie != "access_token" {
		t.Fatalf("AccessCookie = %q", cfg.AccessCookie)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("AUTHKIT_SIGNING_SECRET", secret)
	t.Setenv("AUTHKIT_ACCESS_TTL", "90s")
	t.Setenv("AUTHKIT_REDIS_PREFIX", "envapp")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.AccessTTL != 90*time.Second {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.RedisPrefix != "envapp" {
		t.Fatalf("RedisPrefix = %q", cfg.RedisPrefix)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authkit.yaml")
	if err := os.WriteFile(path, []byte("access_ttl: soon\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
