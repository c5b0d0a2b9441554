/*
Package config provides configuration loading and validation for Mailout.

Configuration is assembled once at startup and passed down explicitly;
no component reads the environment on its own. Sources, lowest to
highest precedence: built-in defaults, an optional .mailout.yaml file,
environment variables. A .env file in the working directory is loaded
into the environment first when present.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/mailout/internal/recipient"
)

// DefaultConfigFile is the config file name looked up in the working
// directory when no --config flag is given.
const DefaultConfigFile = ".mailout.yaml"

// Config represents the complete Mailout configuration.
type Config struct {
	// EmailAddress is the sender address and SMTP username
	EmailAddress string `yaml:"email_address,omitempty"`

	// EmailPassword is the SMTP password (Gmail app password).
	// Never read from the YAML file, only from the environment.
	EmailPassword string `yaml:"-"`

	// FromName is the display name used in the From header
	FromName string `yaml:"from_name,omitempty"`

	// SMTPServer is the SMTP host
	SMTPServer string `yaml:"smtp_server,omitempty"`

	// SMTPPort is the SMTP port (587 uses STARTTLS)
	SMTPPort int `yaml:"smtp_port,omitempty"`

	// DefaultSubject is used when neither flag nor template provide one
	DefaultSubject string `yaml:"default_subject,omitempty"`

	// RateLimitDelay is the pause between consecutive send attempts, in
	// seconds. A pointer, so an explicit zero (no pacing) is
	// distinguishable from unset and survives merging with the defaults.
	RateLimitDelay *float64 `yaml:"rate_limit_delay,omitempty"`

	// SendTimeout bounds each SMTP dial and send, in seconds. A pointer
	// for the same reason as RateLimitDelay.
	SendTimeout *float64 `yaml:"send_timeout,omitempty"`
}

// Seconds is a convenience for building the pointer-valued duration
// settings.
func Seconds(v float64) *float64 {
	return &v
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		SMTPServer:     "smtp.gmail.com",
		SMTPPort:       587,
		DefaultSubject: "Explore Vietnam",
		RateLimitDelay: Seconds(1.0),
		SendTimeout:    Seconds(30),
	}
}

// Load assembles the configuration. path names a YAML config file; an
// empty path means use .mailout.yaml if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env file")
	}

	cfg := fromEnv()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	fileCfg, err := loadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, err
		}
	} else if fileCfg != nil {
		if err := mergo.Merge(&cfg, *fileCfg); err != nil {
			return nil, fmt.Errorf("failed to merge config file %s: %w", path, err)
		}
	}

	defaults := Default()
	if err := mergo.Merge(&cfg, defaults); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	return &cfg, nil
}

// fromEnv builds a partial Config from environment variables. Zero
// fields are filled in later by the config file and defaults.
func fromEnv() Config {
	return Config{
		EmailAddress:   os.Getenv("EMAIL_ADDRESS"),
		EmailPassword:  os.Getenv("EMAIL_PASSWORD"),
		FromName:       os.Getenv("FROM_NAME"),
		SMTPServer:     os.Getenv("SMTP_SERVER"),
		SMTPPort:       getEnvInt("SMTP_PORT", 0),
		DefaultSubject: os.Getenv("DEFAULT_SUBJECT"),
		RateLimitDelay: getEnvFloat("RATE_LIMIT_DELAY"),
		SendTimeout:    getEnvFloat("SEND_TIMEOUT"),
	}
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that credentials are present and well-formed. Skipped
// for dry runs, which never touch the transport.
func (c *Config) Validate() error {
	if c.EmailAddress == "" {
		return fmt.Errorf("EMAIL_ADDRESS is required")
	}
	if !recipient.ValidAddress(c.EmailAddress) {
		return fmt.Errorf("EMAIL_ADDRESS %q is not a valid email address", c.EmailAddress)
	}
	if c.EmailPassword == "" {
		return fmt.Errorf("EMAIL_PASSWORD is required")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT %d is out of range", c.SMTPPort)
	}
	return nil
}

// Delay returns the pacing delay between send attempts. An explicit
// zero means no pacing.
func (c *Config) Delay() time.Duration {
	if c.RateLimitDelay == nil {
		return time.Second
	}
	return time.Duration(*c.RateLimitDelay * float64(time.Second))
}

// Timeout returns the per-call SMTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.SendTimeout == nil {
		return 30 * time.Second
	}
	return time.Duration(*c.SendTimeout * float64(time.Second))
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		log.Warn("Ignoring non-numeric environment value", "key", key, "value", val)
	}
	return defaultVal
}

// getEnvFloat returns nil when the variable is unset or empty, so that
// an explicit "0" stays distinguishable from absent through the merges.
func getEnvFloat(key string) *float64 {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		log.Warn("Ignoring non-numeric environment value", "key", key, "value", val)
		return nil
	}
	return &f
}

// DefaultTemplate returns a starter .mailout.yaml.
func DefaultTemplate() string {
	return `# Mailout configuration
# Credentials are read from the environment (or a .env file), never from
# this file: set EMAIL_ADDRESS and EMAIL_PASSWORD there.

smtp_server: smtp.gmail.com
smtp_port: 587

# from_name: Vietnam Tourism Team
# default_subject: Explore Vietnam

# Seconds to pause between consecutive sends.
rate_limit_delay: 1.0

# Seconds allowed for each SMTP dial and send.
send_timeout: 30
`
}
