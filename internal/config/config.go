// Package config loads the server configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration parses YAML values like "5s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the serve command configuration.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`
	// BaseURL is the external address used in opensearch.xml.
	BaseURL string `yaml:"base_url"`
	// StaticDir is served under /static/.
	StaticDir string `yaml:"static_dir"`
	// BlocklistPath points at the domains.txt artifact. Optional; without it
	// no result filtering happens.
	BlocklistPath string `yaml:"blocklist_path"`
	// MetricsDSN is the SQLite database for engine metrics. Optional.
	MetricsDSN string `yaml:"metrics_dsn"`
	// ProxySecret signs image proxy URLs. A random per-process key is used
	// when empty.
	ProxySecret string `yaml:"proxy_secret"`
	// EngineTimeout bounds each upstream engine request.
	EngineTimeout Duration `yaml:"engine_timeout"`
	// Languages are the UI languages offered for Accept-Language matching.
	Languages []string `yaml:"languages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:        ":8080",
		BaseURL:       "http://localhost:8080",
		StaticDir:     "static",
		BlocklistPath: "domains.txt",
		MetricsDSN:    "metrics.db",
		EngineTimeout: Duration(5 * time.Second),
		Languages:     []string{"en", "de"},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		return nil, fmt.Errorf("config %s: listen must not be empty", path)
	}
	if cfg.EngineTimeout <= 0 {
		return nil, fmt.Errorf("config %s: engine_timeout must be positive", path)
	}

	return cfg, nil
}
