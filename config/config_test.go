package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SIM_ID", "API_PORT", "REVEAL_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.SimulationID != "mainnet" {
		t.Fatalf("default sim id: %q", cfg.SimulationID)
	}
	if cfg.APIPort != 3000 {
		t.Fatalf("default api port: %d", cfg.APIPort)
	}
	if cfg.RevealTimeout != 2*time.Minute {
		t.Fatalf("default reveal timeout: %s", cfg.RevealTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIM_ID", "testnet")
	t.Setenv("API_PORT", "8081")
	t.Setenv("REVEAL_TIMEOUT", "30s")
	t.Setenv("SIM_SEED", "42")

	cfg := Load()
	if cfg.SimulationID != "testnet" || cfg.APIPort != 8081 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RevealTimeout != 30*time.Second {
		t.Fatalf("duration override not applied: %s", cfg.RevealTimeout)
	}
	if cfg.Seed != 42 {
		t.Fatalf("seed override not applied: %d", cfg.Seed)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("REVEAL_TIMEOUT", "soon")

	cfg := Load()
	if cfg.APIPort != 3000 {
		t.Fatalf("invalid port should fall back: %d", cfg.APIPort)
	}
	if cfg.RevealTimeout != 2*time.Minute {
		t.Fatalf("invalid duration should fall back: %s", cfg.RevealTimeout)
	}
}
