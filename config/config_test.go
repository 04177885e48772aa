package config

import (
	"testing"
)

func TestFromArgs_Defaults(t *testing.T) {
	cfg, err := FromArgs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.Workers != 0 {
		t.Errorf("expected default workers 0 (one per CPU), got %d", cfg.Workers)
	}
	if cfg.MaxConnections != 10000 {
		t.Errorf("expected default max connections 10000, got %d", cfg.MaxConnections)
	}
}

func TestFromArgs_PortAndWorkers(t *testing.T) {
	cfg, err := FromArgs([]string{"9090", "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Workers)
	}
}

func TestFromArgs_InvalidPort(t *testing.T) {
	cases := []string{"0", "-1", "65536", "abc", ""}

	for _, port := range cases {
		if _, err := FromArgs([]string{port}); err == nil {
			t.Errorf("expected error for port %q", port)
		}
	}
}

func TestFromArgs_InvalidWorkers(t *testing.T) {
	cases := []string{"-1", "four"}

	for _, workers := range cases {
		if _, err := FromArgs([]string{"8080", workers}); err == nil {
			t.Errorf("expected error for worker count %q", workers)
		}
	}
}

func TestFromArgs_ZeroWorkersKeepsDefault(t *testing.T) {
	cfg, err := FromArgs([]string{"8080", "0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 0 {
		t.Errorf("expected workers 0, got %d", cfg.Workers)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("C10K_PORT", "9999")
	t.Setenv("C10K_MAX_CONNECTIONS", "500")

	cfg := New()
	if cfg.Port != 9999 {
		t.Errorf("env port override ignored, got %d", cfg.Port)
	}
	if cfg.MaxConnections != 500 {
		t.Errorf("env max connections override ignored, got %d", cfg.MaxConnections)
	}
}

func TestManager_TypedGetters(t *testing.T) {
	m := NewManager()
	m.Set("port", "8080")
	m.Set("workers", 4)
	m.Set("debug", "true")

	if got := m.GetInt("port"); got != 8080 {
		t.Errorf("GetInt on string value: got %d", got)
	}
	if got := m.GetInt("workers"); got != 4 {
		t.Errorf("GetInt: got %d", got)
	}
	if !m.GetBool("debug") {
		t.Error("GetBool on \"true\" returned false")
	}
	if got := m.GetInt("missing", 42); got != 42 {
		t.Errorf("default value not applied, got %d", got)
	}
}
