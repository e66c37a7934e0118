package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/jfmyers9/mediakeys/internal/media"
)

// Config holds application configuration
type Config struct {
	// Short identity of the player, used for the socket name
	// Default: "mediakeys"
	Name string

	// Human readable name shown in windows and presence
	// Default: "mediakeys"
	DisplayName string

	// Media control backend: auto, ipc, terminal or window
	Backend string

	// Session socket path for the ipc backend (default: per-OS runtime dir)
	SocketPath string

	// Event channel capacity
	ChannelCapacity int

	// Pause between draining events and reflecting state
	TickInterval time.Duration

	// Push failure policy: log or fatal
	PushErrors string

	// When applied events count as a change: any or strict
	ChangePolicy string

	// Metadata published at startup
	Metadata media.Metadata

	// Optional tracks selected by the song cursor
	Playlist []media.Metadata

	// Output format template for the now command
	// Default: "{{.Artist}} - {{.Title}}"
	OutputFormat string

	// Fixed output width for the now command (0 disables padding)
	OutputWidth int

	Discord DiscordConfig
	Journal JournalConfig
}

// DiscordConfig holds Discord Rich Presence configuration
type DiscordConfig struct {
	Enabled bool
	AppID   string
}

// JournalConfig holds reflect journal configuration
type JournalConfig struct {
	Enabled   bool
	Retention time.Duration
}

// track mirrors media.Metadata with the keys used in the config file
type track struct {
	Title    string `mapstructure:"title"`
	Album    string `mapstructure:"album"`
	Artist   string `mapstructure:"artist"`
	CoverURL string `mapstructure:"cover_url"`
}

func (t track) metadata() media.Metadata {
	return media.Metadata{Title: t.Title, Album: t.Album, Artist: t.Artist, CoverURL: t.CoverURL}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := newViper()

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

// Watch reloads the config file whenever it changes and passes the result
// to onChange. It returns false when there is no config file to watch.
func Watch(onChange func(*Config, error)) bool {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return false
	}

	v.OnConfigChange(func(fsnotify.Event) {
		onChange(fromViper(v))
	})
	v.WatchConfig()
	return true
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(getConfigDir())
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("name", "mediakeys")
	v.SetDefault("display_name", "mediakeys")
	v.SetDefault("backend", "auto")
	v.SetDefault("socket_path", "")
	v.SetDefault("channel_capacity", 32)
	v.SetDefault("tick_interval", 50*time.Millisecond)
	v.SetDefault("push_errors", "log")
	v.SetDefault("change_policy", "any")
	v.SetDefault("metadata.title", "When The Sun Hits")
	v.SetDefault("metadata.album", "Souvlaki")
	v.SetDefault("metadata.artist", "Slowdive")
	v.SetDefault("metadata.cover_url", "https://c.pxhere.com/photos/34/c1/souvlaki_authentic_greek_greek_food_mezes-497780.jpg!d")
	v.SetDefault("output_format", "{{.Artist}} - {{.Title}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("discord.enabled", false)
	v.SetDefault("discord.app_id", "")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.retention", 30*24*time.Hour)

	// Read from environment variables, e.g. MEDIAKEYS_DISCORD_APP_ID
	v.SetEnvPrefix("MEDIAKEYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	var tracks []track
	if err := v.UnmarshalKey("playlist", &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse playlist: %w", err)
	}
	playlist := make([]media.Metadata, 0, len(tracks))
	for _, t := range tracks {
		playlist = append(playlist, t.metadata())
	}

	// Map config to struct
	cfg := &Config{
		Name:            v.GetString("name"),
		DisplayName:     v.GetString("display_name"),
		Backend:         v.GetString("backend"),
		SocketPath:      v.GetString("socket_path"),
		ChannelCapacity: v.GetInt("channel_capacity"),
		TickInterval:    v.GetDuration("tick_interval"),
		PushErrors:      v.GetString("push_errors"),
		ChangePolicy:    v.GetString("change_policy"),
		Metadata: media.Metadata{
			Title:    v.GetString("metadata.title"),
			Album:    v.GetString("metadata.album"),
			Artist:   v.GetString("metadata.artist"),
			CoverURL: v.GetString("metadata.cover_url"),
		},
		Playlist:     playlist,
		OutputFormat: v.GetString("output_format"),
		OutputWidth:  v.GetInt("output_width"),
		Discord: DiscordConfig{
			Enabled: v.GetBool("discord.enabled"),
			AppID:   v.GetString("discord.app_id"),
		},
		Journal: JournalConfig{
			Enabled:   v.GetBool("journal.enabled"),
			Retention: v.GetDuration("journal.retention"),
		},
	}

	if cfg.Name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("tick_interval must be positive, got %s", cfg.TickInterval)
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.Name
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	configDir := filepath.Join(configHome, "mediakeys")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory for the journal database
func GetDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "mediakeys"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "mediakeys"), nil
}
