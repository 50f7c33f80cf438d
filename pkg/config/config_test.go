package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s", cfg.Redis.Addr)
	}
	if cfg.Library.PreviewCount != 10 {
		t.Errorf("Library.PreviewCount = %d, want 10", cfg.Library.PreviewCount)
	}
	if cfg.Library.SessionTTL.Std() != 1000*time.Second {
		t.Errorf("Library.SessionTTL = %s, want 1000s", cfg.Library.SessionTTL)
	}
	if cfg.Library.RecommendAfter != 3 {
		t.Errorf("Library.RecommendAfter = %d, want 3", cfg.Library.RecommendAfter)
	}
	if cfg.Kafka.Enabled {
		t.Error("Kafka should be disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
library:
  previewCount: 5
  sessionTTL: 30m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Library.PreviewCount != 5 {
		t.Errorf("Library.PreviewCount = %d, want 5", cfg.Library.PreviewCount)
	}
	if cfg.Library.SessionTTL.Std() != 30*time.Minute {
		t.Errorf("Library.SessionTTL = %s, want 30m", cfg.Library.SessionTTL)
	}
	// Unset values keep their defaults.
	if cfg.Library.RecommendAfter != 3 {
		t.Errorf("Library.RecommendAfter = %d, want default 3", cfg.Library.RecommendAfter)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %s", cfg.Redis.Addr)
	}
	if cfg.Library.SessionTTL.Std() != 2*time.Hour {
		t.Errorf("Library.SessionTTL = %s, want 2h", cfg.Library.SessionTTL)
	}
	if !cfg.Kafka.Enabled {
		t.Error("KAFKA_ENABLED=true should enable Kafka")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero preview count", func(c *Config) { c.Library.PreviewCount = 0 }, "previewCount"},
		{"negative recommend threshold", func(c *Config) { c.Library.RecommendAfter = -1 }, "recommendAfter"},
		{"zero session ttl", func(c *Config) { c.Library.SessionTTL = 0 }, "sessionTTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want error mentioning %s", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := defaultConfig().Postgres.DSN()
	for _, want := range []string{"host=localhost", "port=5432", "dbname=goodreads", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN missing %q: %s", want, dsn)
		}
	}
}
