package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("database.host = %q", cfg.Database.Host)
	}
	if !cfg.Audit.Enabled {
		t.Error("audit.enabled should default to true")
	}
	if cfg.Audit.RetentionDays != 180 {
		t.Errorf("audit.retention_days = %d, want 180", cfg.Audit.RetentionDays)
	}
	if cfg.Audit.SweepIntervalHours != 24 {
		t.Errorf("audit.sweep_interval_hours = %d, want 24", cfg.Audit.SweepIntervalHours)
	}
	if cfg.Security.TenantHeader != "X-Tenant-ID" {
		t.Errorf("security.tenant_header = %q", cfg.Security.TenantHeader)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SVB_SERVER_PORT", "9091")
	t.Setenv("SVB_DATABASE_NAME", "vendas_teste")
	t.Setenv("SVB_AUDIT_ENABLED", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9091 {
		t.Errorf("server.port = %d, want 9091", cfg.Server.Port)
	}
	if cfg.Database.Name != "vendas_teste" {
		t.Errorf("database.name = %q", cfg.Database.Name)
	}
	if cfg.Audit.Enabled {
		t.Error("audit.enabled should be overridden to false")
	}
}

func TestUnprefixedRetentionDaysBinding(t *testing.T) {
	t.Setenv("AUDIT_RETENTION_DAYS", "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.RetentionDays != 30 {
		t.Errorf("audit.retention_days = %d, want 30 from AUDIT_RETENTION_DAYS", cfg.Audit.RetentionDays)
	}
}

func TestPrefixedRetentionDaysStillWorks(t *testing.T) {
	t.Setenv("SVB_AUDIT_RETENTION_DAYS", "90")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.RetentionDays != 90 {
		t.Errorf("audit.retention_days = %d, want 90", cfg.Audit.RetentionDays)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
server:
  port: 8181
audit:
  retention_days: 365
logging:
  level: warn
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("server.port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Audit.RetentionDays != 365 {
		t.Errorf("audit.retention_days = %d, want 365", cfg.Audit.RetentionDays)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want warn", cfg.Logging.Level)
	}
	// Defaults still fill unspecified values.
	if cfg.Database.Port != 5432 {
		t.Errorf("database.port = %d, want 5432", cfg.Database.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Host: "h", Name: "n", User: "u"},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db name", func(c *Config) { c.Database.Name = "" }},
		{"missing db user", func(c *Config) { c.Database.User = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"negative sweep interval", func(c *Config) { c.Audit.SweepIntervalHours = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db.local", Port: 5433, User: "vendas", Password: "s3cr3t",
		Name: "sistema_vendas", SSLMode: "disable",
	}
	want := "host=db.local port=5433 user=vendas password=s3cr3t dbname=sistema_vendas sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}

func TestRetentionHorizon(t *testing.T) {
	c := AuditConfig{RetentionDays: 180}
	if got := c.RetentionHorizon(); got != 180*24*time.Hour {
		t.Errorf("RetentionHorizon() = %v", got)
	}
}
