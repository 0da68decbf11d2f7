// Package config holds the service configuration. Values come from Default,
// are overlaid by an optional YAML file, then by command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-laptopprice/internal/logging"
)

// Config is the full service configuration.
type Config struct {
	Server    Server    `yaml:"server"`
	Artifacts Artifacts `yaml:"artifacts"`
	Inference Inference `yaml:"inference"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
	Theme     Theme     `yaml:"theme"`
}

// Server configures the HTTP listener.
type Server struct {
	Addr          string        `yaml:"addr"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// Artifacts locates the pipeline and reference dataset. Empty locations fall
// back to the embedded samples.
type Artifacts struct {
	Pipeline string        `yaml:"pipeline"`
	Dataset  string        `yaml:"dataset"`
	Timeout  time.Duration `yaml:"timeout"`
	Storage  Storage       `yaml:"storage"`
}

// Storage configures s3:// artifact resolution. A non-empty Endpoint selects
// an S3-compatible store instead of AWS.
type Storage struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// Inference configures how predictions are computed.
type Inference struct {
	RemoteURL string        `yaml:"remote_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// RateLimit bounds prediction requests per second. Zero RPS disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Log selects the log format and level.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Theme selects the stylesheet variant.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":5000",
			ShutdownGrace: 5 * time.Second,
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
		},
		Artifacts: Artifacts{
			Timeout: time.Minute,
			Storage: Storage{Secure: true},
		},
		Inference: Inference{
			Timeout: 5 * time.Second,
		},
		RateLimit: RateLimit{
			RPS:   20,
			Burst: 40,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Theme: Theme{
			Name:    "default",
			Variant: "light",
		},
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: target is nil")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// RegisterFlags binds every field to fs using the current values as
// defaults. Call it after Load so flags override the file.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Server.Addr, "addr", c.Server.Addr, "HTTP listen address")
	fs.DurationVar(&c.Server.ShutdownGrace, "grace", c.Server.ShutdownGrace, "Shutdown grace period")
	fs.DurationVar(&c.Server.ReadTimeout, "read-timeout", c.Server.ReadTimeout, "HTTP read timeout")
	fs.DurationVar(&c.Server.WriteTimeout, "write-timeout", c.Server.WriteTimeout, "HTTP write timeout")

	fs.StringVar(&c.Artifacts.Pipeline, "pipeline", c.Artifacts.Pipeline, "Pipeline artifact (path, fs:name, http(s):// or s3:// URL)")
	fs.StringVar(&c.Artifacts.Dataset, "dataset", c.Artifacts.Dataset, "Reference dataset (path, fs:name, http(s):// or s3:// URL)")
	fs.DurationVar(&c.Artifacts.Timeout, "artifact-timeout", c.Artifacts.Timeout, "Per-artifact download timeout")
	fs.StringVar(&c.Artifacts.Storage.Region, "s3-region", c.Artifacts.Storage.Region, "AWS region for s3:// artifacts")
	fs.StringVar(&c.Artifacts.Storage.Endpoint, "s3-endpoint", c.Artifacts.Storage.Endpoint, "S3-compatible endpoint (host:port)")
	fs.StringVar(&c.Artifacts.Storage.AccessKey, "s3-access-key", c.Artifacts.Storage.AccessKey, "S3-compatible access key")
	fs.StringVar(&c.Artifacts.Storage.SecretKey, "s3-secret-key", c.Artifacts.Storage.SecretKey, "S3-compatible secret key")
	fs.BoolVar(&c.Artifacts.Storage.Secure, "s3-secure", c.Artifacts.Storage.Secure, "Use TLS for the S3-compatible endpoint")

	fs.StringVar(&c.Inference.RemoteURL, "remote-url", c.Inference.RemoteURL, "Remote inference endpoint (overrides the pipeline artifact)")
	fs.DurationVar(&c.Inference.Timeout, "inference-timeout", c.Inference.Timeout, "Remote inference timeout")

	fs.Float64Var(&c.RateLimit.RPS, "rate", c.RateLimit.RPS, "Prediction requests per second (0 disables)")
	fs.IntVar(&c.RateLimit.Burst, "burst", c.RateLimit.Burst, "Prediction burst size")

	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format (text, json)")

	fs.StringVar(&c.Theme.Name, "theme", c.Theme.Name, "Theme name")
	fs.StringVar(&c.Theme.Variant, "theme-variant", c.Theme.Variant, "Theme variant (light, dark)")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.ShutdownGrace < 0 || c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("config: server timeouts must not be negative")
	}
	if c.Artifacts.Timeout <= 0 {
		return errors.New("config: artifacts.timeout must be positive")
	}
	if c.Inference.Timeout <= 0 {
		return errors.New("config: inference.timeout must be positive")
	}
	if c.RateLimit.RPS < 0 {
		return errors.New("config: rate_limit.rps must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return errors.New("config: rate_limit.burst must be at least 1")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q must be text or json", c.Log.Format)
	}
	if usesS3(c.Artifacts.Pipeline) || usesS3(c.Artifacts.Dataset) {
		if c.Artifacts.Storage.Endpoint != "" && (c.Artifacts.Storage.AccessKey == "" || c.Artifacts.Storage.SecretKey == "") {
			return errors.New("config: artifacts.storage access_key and secret_key are required with a custom endpoint")
		}
	}
	return nil
}

// UsesObjectStorage reports whether any artifact lives in object storage.
func (c Config) UsesObjectStorage() bool {
	return usesS3(c.Artifacts.Pipeline) || usesS3(c.Artifacts.Dataset)
}

func usesS3(location string) bool {
	return strings.HasPrefix(strings.TrimSpace(location), "s3://")
}
