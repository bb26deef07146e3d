package config

import "testing"

func TestDefaultSimMatchesSpecLiterals(t *testing.T) {
	cfg := DefaultSim()
	if cfg.TickRateHz != 20 || cfg.MapRadius != 2000 || cfg.MaxSpeedBase != 150 {
		t.Fatalf("unexpected sim defaults: %+v", cfg)
	}
}

func TestSimFromEnvOverride(t *testing.T) {
	t.Setenv("TICK_RATE_HZ", "30")
	cfg := SimFromEnv()
	if cfg.TickRateHz != 30 {
		t.Fatalf("expected TICK_RATE_HZ override to apply, got %d", cfg.TickRateHz)
	}
	if cfg.MapRadius != 2000 {
		t.Fatalf("expected unset vars to keep defaults, got MapRadius=%v", cfg.MapRadius)
	}
}

func TestObservabilityForcesLocalhostWithoutOptIn(t *testing.T) {
	t.Setenv("METRICS_LISTEN_ADDR", "0.0.0.0:6060")
	cfg := ObservabilityFromEnv()
	if cfg.ListenAddr != "127.0.0.1:6060" {
		t.Fatalf("expected debug server forced to localhost, got %s", cfg.ListenAddr)
	}
}

func TestObservabilityAllowsExternalWithExplicitOptIn(t *testing.T) {
	t.Setenv("METRICS_LISTEN_ADDR", "0.0.0.0:6060")
	t.Setenv("ALLOW_DEBUG_EXTERNAL", "true")
	cfg := ObservabilityFromEnv()
	if cfg.ListenAddr != "0.0.0.0:6060" {
		t.Fatalf("expected explicit opt-in to be honored, got %s", cfg.ListenAddr)
	}
}

func TestLoadComposesAllSections(t *testing.T) {
	cfg := Load()
	if cfg.Sim.TickRateHz == 0 || cfg.Limits.MaxEntities == 0 || cfg.Server.Port == 0 {
		t.Fatalf("expected Load to populate every section, got %+v", cfg)
	}
}
