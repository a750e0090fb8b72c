package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
  mode: test
database:
  dsn: postgres://u:p@localhost:5432/catalog
  max_open_conns: 7
  conn_max_lifetime: 90s
log:
  level: debug
`)
	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.Mode != "test" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Database.MaxOpenConns != 7 {
		t.Fatalf("max_open_conns = %d, want 7", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime != 90*time.Second {
		t.Fatalf("conn_max_lifetime = %v, want 90s", cfg.Database.ConnMaxLifetime)
	}
	// 未配置的字段取默认值
	if cfg.Database.MaxIdleConns != 5 || !cfg.Database.AutoCreate {
		t.Fatalf("defaults not applied: %+v", cfg.Database)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "database:\n  dsn: postgres://yaml/db\n")
	t.Setenv("CATALOG_DATABASE_DSN", "postgres://env/db")
	t.Setenv("CATALOG_SERVER_PORT", "7001")
	t.Setenv("CATALOG_LOG_LEVEL", "warn")

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Database.DSN != "postgres://env/db" {
		t.Fatalf("dsn = %q, want env value", cfg.Database.DSN)
	}
	if cfg.Server.Port != 7001 {
		t.Fatalf("port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoadConfigInvalidPortEnv(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("CATALOG_SERVER_PORT", "not-a-port")
	if _, err := LoadConfigFrom(dir); err == nil {
		t.Fatal("expected error for invalid CATALOG_SERVER_PORT")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfigFrom(t.TempDir()); err == nil {
		t.Fatal("expected error when config.yaml is missing")
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"warn":   logger.Warn,
		"info":   logger.Info,
		"bogus":  logger.Warn,
	}
	for in, want := range cases {
		d := DatabaseConfig{SQLLogLevel: in}
		if got := d.GormLogLevel(); got != want {
			t.Errorf("GormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
