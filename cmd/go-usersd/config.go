package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-users"
)

// Config is the on disk configuration for go-usersd.
type Config struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"`

	Token struct {
		SigningKey         string        `yaml:"signing_key"`
		Expiration         time.Duration `yaml:"expiration"`
		Issuer             string        `yaml:"issuer"`
		Audience           string        `yaml:"audience"`
		StrictSubjectCheck *bool         `yaml:"strict_subject_check"`
	} `yaml:"token"`

	Attempts struct {
		Max      int           `yaml:"max"`
		TTL      time.Duration `yaml:"ttl"`
		Capacity int           `yaml:"capacity"`
	} `yaml:"attempts"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Images struct {
		Dir string `yaml:"dir"`
	} `yaml:"images"`

	SMTP     users.SMTPConfig `yaml:"smtp"`
	MailNoop bool             `yaml:"mail_noop"`
}

// LoadConfig reads and validates the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Token.SigningKey == "" {
		return nil, fmt.Errorf("token.signing_key is required")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "go-users.db"
	}
	if c.Images.Dir == "" {
		c.Images.Dir = "profile-images"
	}
}

// GetSigningKey implements users.Config
func (c *Config) GetSigningKey() string { return c.Token.SigningKey }

// GetTokenExpiration implements users.Config
func (c *Config) GetTokenExpiration() time.Duration { return c.Token.Expiration }

// GetIssuer implements users.Config
func (c *Config) GetIssuer() string { return c.Token.Issuer }

// GetAudience implements users.Config
func (c *Config) GetAudience() string { return c.Token.Audience }

// GetStrictSubjectCheck reports the configured subject check mode, strict
// unless explicitly disabled.
func (c *Config) GetStrictSubjectCheck() bool {
	if c.Token.StrictSubjectCheck == nil {
		return true
	}
	return *c.Token.StrictSubjectCheck
}

var _ users.Config = (*Config)(nil)
