package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ReadTimeout: 30, WriteTimeout: 30, BodyLimitMB: 64},
		Session: SessionConfig{Store: StoreMemory, TTLSeconds: 3600, CookieName: "pilingqa_session"},
		DXF:     DXFConfig{Enabled: true},
		Valkey:  ValkeyConfig{Addr: "localhost:6379"},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("pilingqa-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.BodyLimit() != 64<<20 {
		t.Errorf("expected 64 MiB body limit, got %d", cfg.Server.BodyLimit())
	}
	if cfg.Session.Store != StoreMemory || cfg.Session.CookieName != "pilingqa_session" {
		t.Errorf("unexpected session defaults %+v", cfg.Session)
	}
	if !cfg.DXF.Enabled {
		t.Error("expected DXF enabled by default")
	}
	if cfg.Telemetry.ServiceName != "pilingqa-test" {
		t.Errorf("expected service name from argument, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PILINGQA_SERVER_PORT", "9090")
	t.Setenv("PILINGQA_DXF_ENABLED", "false")
	t.Setenv("PILINGQA_SESSION_STORE", "valkey")

	cfg, err := Load("pilingqa-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.DXF.Enabled {
		t.Error("expected DXF disabled")
	}
	if cfg.Session.Store != StoreValkey {
		t.Errorf("expected valkey store, got %s", cfg.Session.Store)
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Server.BodyLimitMB = 0
	cfg.Session.Store = "postgres"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "server.body_limit_mb", "session.store", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_ValkeyStoreNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Store = StoreValkey
	cfg.Valkey.Addr = ""

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "valkey.addr") {
		t.Fatalf("expected valkey.addr error, got %v", err)
	}
}
