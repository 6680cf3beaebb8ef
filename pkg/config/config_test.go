package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Editor.BaseX != 80 || cfg.Editor.BaseY != 80 {
		t.Errorf("base point = (%v, %v), want (80, 80)", cfg.Editor.BaseX, cfg.Editor.BaseY)
	}
	if cfg.Editor.RepairChoiceLinks {
		t.Error("RepairChoiceLinks should default to false")
	}
	if cfg.Playback.MinTick() != 10*time.Millisecond {
		t.Errorf("MinTick() = %v, want 10ms", cfg.Playback.MinTick())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		check   func(t *testing.T, c Config)
	}{
		{
			name: "empty keeps defaults",
			text: "",
			check: func(t *testing.T, c Config) {
				if c.Server.Store != StoreFile {
					t.Errorf("Store = %q, want file", c.Server.Store)
				}
			},
		},
		{
			name: "override sections",
			text: "[editor]\nbase_x = 10.0\nrepair_choice_links = true\n[server]\nstore = \"redis\"\nredis_addr = \"cache:6379\"\n",
			check: func(t *testing.T, c Config) {
				if c.Editor.BaseX != 10 || c.Editor.BaseY != 80 {
					t.Errorf("base = (%v, %v), want (10, 80)", c.Editor.BaseX, c.Editor.BaseY)
				}
				if !c.Editor.RepairChoiceLinks {
					t.Error("RepairChoiceLinks not set")
				}
				if c.Server.Store != StoreRedis || c.Server.RedisAddr != "cache:6379" {
					t.Errorf("server = %+v", c.Server)
				}
			},
		},
		{
			name: "playback keys",
			text: "[playback]\nmin_tick_ms = 0\nadvance_keys = [\"x\"]\n",
			check: func(t *testing.T, c Config) {
				if c.Playback.MinTick() != 0 {
					t.Errorf("MinTick() = %v, want 0", c.Playback.MinTick())
				}
				if len(c.Playback.AdvanceKeys) != 1 || c.Playback.AdvanceKeys[0] != "x" {
					t.Errorf("AdvanceKeys = %v", c.Playback.AdvanceKeys)
				}
			},
		},
		{name: "unknown store", text: "[server]\nstore = \"sqlite\"\n", wantErr: true},
		{name: "negative tick", text: "[playback]\nmin_tick_ms = -1\n", wantErr: true},
		{name: "unknown key", text: "[editor]\nzoom = 2\n", wantErr: true},
		{name: "syntax error", text: "[editor\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode(tt.text, &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing optional", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "absent.toml"), false)
		if err != nil {
			t.Fatalf("Load() = %v", err)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
		}
	})

	t.Run("missing required", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.toml"), true); err == nil {
			t.Error("expected error for missing required config")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "parley.toml")
		if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path, true)
		if err != nil {
			t.Fatalf("Load() = %v", err)
		}
		if cfg.Server.Addr != ":9000" {
			t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
		}
	})
}
