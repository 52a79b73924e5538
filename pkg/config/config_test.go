package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"tableflip.dev/backlog/pkg/item"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	body := "server: http://example.test/bt/\narea: Main\nview: epic-story\norder: title\nselection:\n  ttl: 2h\n"
	if err := os.WriteFile(filepath.Join(dir, ".backlog.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BACKLOG_CONFIG_PATH", dir)

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://example.test/bt" {
		t.Errorf("server = %q", cfg.Server)
	}
	if cfg.Area != "Main" || cfg.View != item.ViewEpicStory || cfg.Order != "title" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.SelectionTTL != 2*time.Hour {
		t.Errorf("ttl = %v", cfg.SelectionTTL)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("BACKLOG_CONFIG_PATH", t.TempDir())
	t.Setenv("BACKLOG_AREA", "Ops")
	t.Setenv("BACKLOG_LOG_LEVEL", "debug")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Area != "Ops" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.View != item.ViewStoryTask || cfg.Order != "prio" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := map[string]map[string]any{
		"missing area": {KeyServer: "http://x"},
		"bad view":     {KeyServer: "http://x", KeyArea: "A", KeyView: "home"},
	}
	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range values {
				v.Set(k, val)
			}
			if _, err := Resolve(v); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
