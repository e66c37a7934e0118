package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// withConfigHome points the config directory at a temp dir and optionally
// writes a config file into it
func withConfigHome(t *testing.T, contents string) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Chdir(t.TempDir())

	if contents != "" {
		dir := filepath.Join(home, "mediakeys")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	withConfigHome(t, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "mediakeys" {
		t.Errorf("Name = %q, want mediakeys", cfg.Name)
	}
	if cfg.Backend != "auto" {
		t.Errorf("Backend = %q, want auto", cfg.Backend)
	}
	if cfg.ChannelCapacity != 32 {
		t.Errorf("ChannelCapacity = %d, want 32", cfg.ChannelCapacity)
	}
	if cfg.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.TickInterval)
	}
	if cfg.PushErrors != "log" || cfg.ChangePolicy != "any" {
		t.Errorf("policies = %q/%q, want log/any", cfg.PushErrors, cfg.ChangePolicy)
	}
	if cfg.Metadata.Title != "When The Sun Hits" || cfg.Metadata.Album != "Souvlaki" || cfg.Metadata.Artist != "Slowdive" {
		t.Errorf("Metadata = %+v", cfg.Metadata)
	}
	if cfg.Metadata.CoverURL == "" {
		t.Error("default cover URL is empty")
	}
	if len(cfg.Playlist) != 0 {
		t.Errorf("Playlist = %v, want empty", cfg.Playlist)
	}
	if cfg.Discord.Enabled {
		t.Error("Discord enabled by default")
	}
	if !cfg.Journal.Enabled || cfg.Journal.Retention != 30*24*time.Hour {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
}

func TestLoad_File(t *testing.T) {
	withConfigHome(t, `
name: souvlaki
backend: terminal
tick_interval: 100ms
change_policy: strict
metadata:
  title: Alison
  artist: Slowdive
playlist:
  - title: Alison
    album: Souvlaki
    artist: Slowdive
  - title: Machine Gun
    album: Souvlaki
    artist: Slowdive
    cover_url: https://example.com/mg.jpg
discord:
  enabled: true
  app_id: "1234"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "souvlaki" {
		t.Errorf("Name = %q, want souvlaki", cfg.Name)
	}
	if cfg.DisplayName != "mediakeys" {
		t.Errorf("DisplayName = %q, want default", cfg.DisplayName)
	}
	if cfg.Backend != "terminal" {
		t.Errorf("Backend = %q, want terminal", cfg.Backend)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %v, want 100ms", cfg.TickInterval)
	}
	if cfg.ChangePolicy != "strict" {
		t.Errorf("ChangePolicy = %q, want strict", cfg.ChangePolicy)
	}
	if cfg.Metadata.Title != "Alison" || cfg.Metadata.Album != "Souvlaki" {
		t.Errorf("Metadata = %+v, want title override with default album", cfg.Metadata)
	}
	if len(cfg.Playlist) != 2 {
		t.Fatalf("Playlist length = %d, want 2", len(cfg.Playlist))
	}
	if cfg.Playlist[1].Title != "Machine Gun" || cfg.Playlist[1].CoverURL != "https://example.com/mg.jpg" {
		t.Errorf("Playlist[1] = %+v", cfg.Playlist[1])
	}
	if !cfg.Discord.Enabled || cfg.Discord.AppID != "1234" {
		t.Errorf("Discord = %+v", cfg.Discord)
	}
}

func TestLoad_Environment(t *testing.T) {
	withConfigHome(t, "")
	t.Setenv("MEDIAKEYS_BACKEND", "window")
	t.Setenv("MEDIAKEYS_DISCORD_APP_ID", "9999")
	t.Setenv("MEDIAKEYS_CHANNEL_CAPACITY", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != "window" {
		t.Errorf("Backend = %q, want window", cfg.Backend)
	}
	if cfg.Discord.AppID != "9999" {
		t.Errorf("Discord.AppID = %q, want 9999", cfg.Discord.AppID)
	}
	if cfg.ChannelCapacity != 8 {
		t.Errorf("ChannelCapacity = %d, want 8", cfg.ChannelCapacity)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	withConfigHome(t, "name: [unterminated")

	if _, err := Load(); err == nil {
		t.Error("Load() succeeded with malformed YAML")
	}
}

func TestLoad_NonPositiveTickInterval(t *testing.T) {
	for _, interval := range []string{"0s", "-5ms"} {
		t.Run(interval, func(t *testing.T) {
			withConfigHome(t, "tick_interval: "+interval+"\n")

			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted tick_interval %s", interval)
			}
		})
	}
}

func TestGetConfigDir(t *testing.T) {
	home := withConfigHome(t, "")

	dir := GetConfigDir()
	if dir != filepath.Join(home, "mediakeys") {
		t.Errorf("GetConfigDir() = %q", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("config dir not created: %v", err)
	}
}

func TestGetDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir() error = %v", err)
	}
	if dir != filepath.Join("/data", "mediakeys") {
		t.Errorf("GetDataDir() = %q", dir)
	}
}

func TestWatch_NoFile(t *testing.T) {
	withConfigHome(t, "")

	if Watch(func(*Config, error) {}) {
		t.Error("Watch() = true without a config file")
	}
}

func TestWatch_ReloadsOnEdit(t *testing.T) {
	home := withConfigHome(t, "metadata:\n  title: Alison\n")

	changes := make(chan *Config, 16)
	if !Watch(func(cfg *Config, err error) {
		if err != nil {
			return
		}
		select {
		case changes <- cfg:
		default:
		}
	}) {
		t.Fatal("Watch() = false with a config file")
	}

	edited := `metadata:
  title: Machine Gun
playlist:
  - title: 40 Days
  - title: Sing
`
	path := filepath.Join(home, "mediakeys", "config.yaml")
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// A single save can fire more than once; wait for the complete file
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Metadata.Title != "Machine Gun" || len(cfg.Playlist) != 2 {
				continue
			}
			if cfg.Playlist[1].Title != "Sing" {
				t.Errorf("Playlist = %+v", cfg.Playlist)
			}
			return
		case <-deadline:
			t.Fatal("onChange never saw the edited config")
		}
	}
}
