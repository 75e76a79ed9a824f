package config

const (
	DefaultAllowedDomains = "app.stickball.biz,musketeers.dev"
	DefaultAddr           = ":8080"
	DefaultUpstream       = "http://localhost:4000"
	DefaultMetricsPort    = "7070"
)

type Config struct {
	Addr     string `yaml:"addr,omitempty"`
	Upstream string `yaml:"upstream,omitempty"`

	AllowedDomains []string `yaml:"allowed_domains,omitempty"`
	Strict         bool     `yaml:"strict"`
	Wildcard       bool     `yaml:"wildcard"`

	Log     LogConfig     `yaml:"log,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	TLS     TLSConfig     `yaml:"tls,omitempty"`
}

type LogConfig struct {
	Level   string `yaml:"level,omitempty"`
	Console bool   `yaml:"console"`

	// File enables rotated file output; the remaining fields only apply then.
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port,omitempty"`
}

type TLSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Email   string   `yaml:"email,omitempty"`
	Domains []string `yaml:"domains,omitempty"`
	Staging bool     `yaml:"staging"`

	CloudflareAPIToken string `yaml:"-"`
}
