package config_test

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-laptopprice/pkg/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("addr = %q, want :5000", cfg.Server.Addr)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laptopprice.yaml")
	data := `
server:
  addr: ":8080"
  shutdown_grace: 2s
artifacts:
  pipeline: s3://models/pipeline.yaml.zst
  dataset: samples/laptops.csv
  timeout: 3m
  storage:
    endpoint: localhost:9000
    access_key: minio
    secret_key: minio123
    secure: false
inference:
  timeout: 750ms
log:
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Default()
	want.Server.Addr = ":8080"
	want.Server.ShutdownGrace = 2 * time.Second
	want.Artifacts.Pipeline = "s3://models/pipeline.yaml.zst"
	want.Artifacts.Dataset = "samples/laptops.csv"
	want.Artifacts.Timeout = 3 * time.Minute
	want.Artifacts.Storage = config.Storage{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Secure:    false,
	}
	want.Inference.Timeout = 750 * time.Millisecond
	want.Log.Format = "json"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !got.UsesObjectStorage() {
		t.Fatalf("expected object storage to be detected")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	got, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "unknown.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 80\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg := config.Default()
	if err := config.Parse(nil, &cfg); err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("empty document changed config (-want +got):\n%s", diff)
	}
}

func TestRegisterFlags_OverrideValues(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.Pipeline = "from-file.yaml"

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	err := fs.Parse([]string{
		"-addr", ":9090",
		"-dataset", "https://data.example.com/laptops.csv",
		"-rate", "0",
		"-log-level", "debug",
		"-inference-timeout", "2s",
		"-artifact-timeout", "90s",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Artifacts.Pipeline != "from-file.yaml" {
		t.Fatalf("pipeline = %q, file value should survive", cfg.Artifacts.Pipeline)
	}
	if cfg.Artifacts.Dataset != "https://data.example.com/laptops.csv" {
		t.Fatalf("dataset = %q", cfg.Artifacts.Dataset)
	}
	if cfg.RateLimit.RPS != 0 || cfg.Log.Level != "debug" || cfg.Inference.Timeout != 2*time.Second {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Artifacts.Timeout != 90*time.Second {
		t.Fatalf("artifact timeout = %v", cfg.Artifacts.Timeout)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"addr":        func(c *config.Config) { c.Server.Addr = " " },
		"grace":       func(c *config.Config) { c.Server.ShutdownGrace = -time.Second },
		"timeout":     func(c *config.Config) { c.Inference.Timeout = 0 },
		"artifacts":   func(c *config.Config) { c.Artifacts.Timeout = -time.Second },
		"rps":         func(c *config.Config) { c.RateLimit.RPS = -1 },
		"burst":       func(c *config.Config) { c.RateLimit.Burst = 0 },
		"level":       func(c *config.Config) { c.Log.Level = "loud" },
		"format":      func(c *config.Config) { c.Log.Format = "xml" },
		"credentials": func(c *config.Config) { c.Artifacts.Dataset = "s3://b/k.csv"; c.Artifacts.Storage.Endpoint = "minio:9000" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("error %q lacks package prefix", err)
			}
		})
	}
}
