package mqpasswd

import (
	"fmt"
	"os"

	"github.com/hengadev/errsx"
	"gopkg.in/yaml.v3"

	"github.com/hengadev/mqpasswd/passwdfile"
)

// Config describes the password file to render.
//
// Example mqpasswd.yaml:
//
//	version: "1"
//	output: /etc/mosquitto/passwd
//	prune: true
//	params:
//	  iterations: 101
//	  salt_length: 12
//	users:
//	  - username: sensor
//	    source: env
//	    ref: SENSOR_PASSWORD
//	  - username: hassio
//	    source: vault
//	    ref: secret/data/mqtt/hassio#password
//	  - username: telegraf
//	    source: aws
//	    ref: mqtt/telegraf#password
//	publish:
//	  bucket: infra-configs
//	  key: mosquitto/passwd
//	  region: eu-west-1
//	retry:
//	  max_attempts: 3
//	  initial_delay: 200ms
type Config struct {
	Version string         `yaml:"version"`
	Output  string         `yaml:"output"`
	Prune   bool           `yaml:"prune"`
	Params  Params         `yaml:"params"`
	Users   []UserConfig   `yaml:"users"`
	Publish *PublishConfig `yaml:"publish,omitempty"`
	Retry   RetryConfig    `yaml:"retry"`
	Log     LogConfig      `yaml:"log"`
}

// UserConfig names one broker user and where its password comes from.
type UserConfig struct {
	Username string `yaml:"username"`
	Source   string `yaml:"source"`
	Ref      string `yaml:"ref"`
}

// PublishConfig locates the S3 object the rendered file is uploaded to.
type PublishConfig struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	Region string `yaml:"region,omitempty"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

var knownSources = map[string]bool{
	SourceEnv:   true,
	SourceFile:  true,
	SourceVault: true,
	SourceAWS:   true,
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file not found: %s", ErrInvalidConfiguration, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %w", ErrInvalidConfiguration, err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a starter configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Output:  "passwd",
		Params:  DefaultParams(),
		Users: []UserConfig{
			{Username: "mqtt", Source: SourceEnv, Ref: "MQTT_PASSWORD"},
		},
		Retry: DefaultRetryConfig(),
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the configuration and applies defaults to optional fields.
// The returned error wraps an errsx.Map keyed by setting.
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = "1"
	}
	c.Params = c.Params.withDefaults()
	c.Retry = c.Retry.withDefaults()

	var errs errsx.Map
	if c.Version != "1" {
		errs.Set("version", fmt.Sprintf("unsupported version '%s'", c.Version))
	}
	if c.Output == "" {
		errs.Set("output", "cannot be empty")
	}
	if err := c.Params.Validate(); err != nil {
		errs.Set("params", err)
	}

	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > MaxRetryAttempts {
		errs.Set("retry.max_attempts", fmt.Sprintf("must be between 1 and %d, got %d", MaxRetryAttempts, c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelay < 0 {
		errs.Set("retry.initial_delay", "cannot be negative")
	}

	seen := make(map[string]bool, len(c.Users))
	for i, u := range c.Users {
		key := fmt.Sprintf("users[%d]", i)
		if err := passwdfile.ValidateUsername(u.Username); err != nil {
			errs.Set(key, err)
			continue
		}
		if seen[u.Username] {
			errs.Set(key, fmt.Sprintf("duplicate username '%s'", u.Username))
			continue
		}
		seen[u.Username] = true

		if !knownSources[u.Source] {
			errs.Set(key, fmt.Sprintf("source must be one of: env, file, vault, aws, got '%s'", u.Source))
			continue
		}
		if u.Ref == "" {
			errs.Set(key, "ref cannot be empty")
		}
	}

	if c.Publish != nil {
		if c.Publish.Bucket == "" {
			errs.Set("publish.bucket", "cannot be empty")
		}
		if c.Publish.Key == "" {
			errs.Set("publish.key", "cannot be empty")
		}
	}

	if err := errs.AsError(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// UsesSource reports whether any user reads from source.
func (c *Config) UsesSource(source string) bool {
	for _, u := range c.Users {
		if u.Source == source {
			return true
		}
	}
	return false
}
