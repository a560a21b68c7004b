package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port == 0 {
		t.Error("server port should default")
	}
	if cfg.Database.Name == "" || cfg.Database.Path == "" {
		t.Errorf("database defaults missing: %+v", cfg.Database)
	}
	if cfg.Setup.InstallationKey == "" {
		t.Error("installation key should default")
	}
	if cfg.Session.TTL() <= 0 {
		t.Errorf("session ttl = %v", cfg.Session.TTL())
	}
	if cfg.SMTP.Enabled() {
		t.Error("smtp should be disabled without a host")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Path: "/tmp/data", Name: "site"}
	want := filepath.Join("/tmp/data", "site.db")
	if d.DSN() != want {
		t.Errorf("dsn = %q, want %q", d.DSN(), want)
	}
}

func TestSessionTTLFloor(t *testing.T) {
	s := SessionConfig{TTLHours: 0}
	if s.TTL() != 24*time.Hour {
		t.Errorf("zero ttl = %v, want 24h", s.TTL())
	}
	s.TTLHours = 2
	if s.TTL() != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", s.TTL())
	}
}
