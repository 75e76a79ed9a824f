package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/Dyastin-0/llmgate/internal/allowlist"
	"gopkg.in/yaml.v2"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() *Config {
	return &Config{
		Addr:           DefaultAddr,
		Upstream:       DefaultUpstream,
		AllowedDomains: splitList(DefaultAllowedDomains),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Port: DefaultMetricsPort,
		},
	}
}

// Load reads the YAML file at filename, when given, and applies environment
// overrides from the process environment.
func Load(filename string) (*Config, error) {
	return LoadWithEnv(filename, os.LookupEnv)
}

func LoadWithEnv(filename string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if err := cfg.readFile(filename); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) readFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode YAML: %w", err)
	}

	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) {
	if v, ok := lookup("ALLOWED_DOMAINS"); ok {
		c.AllowedDomains = splitList(v)
	}
	if v, ok := lookup("STRICT_DOMAIN_CHECK"); ok {
		c.Strict = isTrue(v)
	}
	if v, ok := lookup("WILDCARD_DOMAINS"); ok {
		c.Wildcard = isTrue(v)
	}
	if v, ok := lookup("UPSTREAM_URL"); ok && v != "" {
		c.Upstream = v
	}
	if v, ok := lookup("LISTEN_ADDR"); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("METRICS_PORT"); ok && v != "" {
		c.Metrics.Port = v
	}
	if v, ok := lookup("CLOUDFLARE_API_TOKEN"); ok {
		c.TLS.CloudflareAPIToken = v
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Upstream)
	if err != nil {
		return fmt.Errorf("invalid upstream %q: %w", c.Upstream, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid upstream %q: must be an absolute http(s) URL", c.Upstream)
	}

	if c.Addr == "" {
		return errors.New("listen address is empty")
	}

	if _, err := c.Allowlist(); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if len(c.TLS.Domains) == 0 {
			return errors.New("tls enabled without domains")
		}
		if !isValidEmail(c.TLS.Email) {
			return fmt.Errorf("invalid email: %s", c.TLS.Email)
		}
	}

	return nil
}

// Allowlist builds the immutable allowlist described by the configuration.
func (c *Config) Allowlist() (*allowlist.Allowlist, error) {
	return allowlist.New(c.AllowedDomains, c.Wildcard)
}

// splitList splits a comma separated list and trims each entry. Empty
// entries are dropped.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true")
}

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
