package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/dirharvest/internal/extract"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default RootURL is the eu-startups directory", func(t *testing.T) {
		t.Parallel()
		if cfg.RootURL != "https://www.eu-startups.com/directory/" {
			t.Errorf("unexpected RootURL %q", cfg.RootURL)
		}
	})

	t.Run("default PoolSize is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.PoolSize != 10 {
			t.Errorf("expected PoolSize to be 10, got %d", cfg.PoolSize)
		}
	})

	t.Run("default MaxPages is 1000", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 1000 {
			t.Errorf("expected MaxPages to be 1000, got %d", cfg.MaxPages)
		}
	})

	t.Run("default Timeout is 60 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 60*time.Second {
			t.Errorf("expected Timeout to be 60s, got %v", cfg.Timeout)
		}
	})

	t.Run("default OutputPath is data.json", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputPath != "data.json" {
			t.Errorf("expected data.json, got %q", cfg.OutputPath)
		}
	})

	t.Run("default RequestDelay is zero and no proxy", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestDelay != 0 || cfg.ProxyAddress != "" {
			t.Errorf("unexpected delay %v or proxy %q", cfg.RequestDelay, cfg.ProxyAddress)
		}
	})

	t.Run("default DBDir is the XDG data directory", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() || !cfg.SaveToDB {
			t.Errorf("unexpected DBDir %q SaveToDB %v", cfg.DBDir, cfg.SaveToDB)
		}
		if !strings.HasSuffix(cfg.DBDir, AppName) {
			t.Errorf("expected DBDir to end with %s", AppName)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid default config, got %v", err)
		}
	})
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty root URL", func(c *Config) { c.RootURL = "" }, ErrNoRootURL},
		{"relative root URL", func(c *Config) { c.RootURL = "/directory/" }, ErrInvalidRootURL},
		{"non-http root URL", func(c *Config) { c.RootURL = "ftp://example.com/" }, ErrInvalidRootURL},
		{"zero pool size", func(c *Config) { c.PoolSize = 0 }, ErrInvalidPoolSize},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }, ErrInvalidRequestDelay},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"unknown summary", func(c *Config) { c.Summary = "html" }, ErrInvalidSummaryFormat},
		{"empty output", func(c *Config) { c.OutputPath = "" }, ErrNoOutputPath},
		{"listing field named details", func(c *Config) {
			c.File = &File{Contracts: extract.Contracts{Listing: extract.ListContract{
				Fields: extract.Contract{{Name: "details", Locators: []extract.Locator{{Container: "h3"}}}},
			}}}
		}, ErrInvalidContracts},
		{"markdown summary", func(c *Config) { c.Summary = SummaryMarkdown }, nil},
		{"zero body size uses default", func(c *Config) { c.MaxBodySize = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

const sampleFile = `
rootURL: https://example.com/directory/
pool: 4
maxPages: 50
timeout: 30s
delay: 250ms
userAgent: test-agent
proxy: socks5://127.0.0.1:1080
output: out/result.json
contracts:
  nextLink: a.next
  listing:
    item: article.listing
`

// TestLoadConfigFile tests reading and applying the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads and applies every setting", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(sampleFile), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		cfg := NewConfig()
		cfg.ApplyFile(f)

		if cfg.RootURL != "https://example.com/directory/" || cfg.PoolSize != 4 || cfg.MaxPages != 50 {
			t.Errorf("unexpected crawl settings: %+v", cfg)
		}
		if cfg.Timeout != 30*time.Second || cfg.RequestDelay != 250*time.Millisecond {
			t.Errorf("unexpected durations: timeout %v delay %v", cfg.Timeout, cfg.RequestDelay)
		}
		if cfg.UserAgent != "test-agent" || cfg.ProxyAddress != "socks5://127.0.0.1:1080" {
			t.Errorf("unexpected transport settings: %+v", cfg)
		}
		if cfg.OutputPath != "out/result.json" {
			t.Errorf("unexpected output %q", cfg.OutputPath)
		}

		contracts := cfg.Contracts()
		if contracts.NextLink != "a.next" {
			t.Errorf("expected next link override, got %q", contracts.NextLink)
		}
		if contracts.Listing.Item != "article.listing" {
			t.Errorf("expected item override, got %q", contracts.Listing.Item)
		}
		defaults := extract.DefaultContracts()
		if contracts.Listing.Container != defaults.Listing.Container {
			t.Errorf("expected default container kept, got %q", contracts.Listing.Container)
		}
		if len(contracts.Detail) != len(defaults.Detail) {
			t.Error("expected default detail contract kept")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("pool: [1, 2"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("nil file leaves defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if cfg.File != nil || cfg.PoolSize != DefaultPoolSize {
			t.Error("expected defaults to be kept")
		}
	})
}

// TestFindConfigFile tests explicit config path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path when it exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("pool: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for missing explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}
