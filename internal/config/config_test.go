package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"literature-lite/card"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Store.Driver != "sqlite" || cfg.Game.Players != 6 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Game.ThinkDelay != 1500*time.Millisecond || cfg.Auth.TTL != 24*time.Hour {
		t.Fatalf("durations not decoded: think=%v ttl=%v", cfg.Game.ThinkDelay, cfg.Auth.TTL)
	}
	eng, err := cfg.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig err: %v", err)
	}
	if eng.Layout != card.LayoutHalfSuit || eng.PlayerCount != 6 {
		t.Fatalf("unexpected engine config %+v", eng)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	body := []byte(`
server:
  addr: ":9000"
game:
  variant: fish
  players: 4
  turnTimeout: 45s
store:
  driver: memory
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LITERATURE_SERVER_ADDR", ":9100")
	t.Setenv("LITERATURE_AUTH_SECRET", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Fatalf("env should win over file, got %s", cfg.Server.Addr)
	}
	if cfg.Auth.Secret != "s3cret" || cfg.Store.Driver != "memory" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Game.TurnTimeout != 45*time.Second {
		t.Fatalf("turn timeout = %v", cfg.Game.TurnTimeout)
	}
	eng, err := cfg.EngineConfig()
	if err != nil || eng.Layout != card.LayoutRank || eng.PlayerCount != 4 {
		t.Fatalf("fish engine config = %+v, %v", eng, err)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("LITERATURE_STORE_DRIVER", "cassandra")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
