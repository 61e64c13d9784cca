package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/mpv-sponsorblock/internal/logger"
	"github.com/llehouerou/mpv-sponsorblock/internal/sponsorblock"
)

const fileName = "sponsorblock.toml"

// Notice sinks.
const (
	SinkOSD     = "osd"
	SinkDesktop = "desktop"
	SinkBoth    = "both"
)

type Config struct {
	ServerAddress string   `koanf:"server_address"`
	Categories    []string `koanf:"categories"`
	Mute          bool     `koanf:"mute"`        // enables the mute action type
	PrivacyAPI    bool     `koanf:"privacy_api"` // look up by hash prefix
	Domains       []string `koanf:"domains"`     // extra hosts serving YouTube IDs
	SkipNotice    bool     `koanf:"skip_notice"`

	RequestTimeout int    `koanf:"request_timeout"` // seconds
	CacheSize      int    `koanf:"cache_size"`      // 0 disables the cache
	Socket         string `koanf:"socket"`          // mpv --input-ipc-server path
	POIMessage     string `koanf:"poi_message"`     // script-message that jumps to the highlight

	Log     LogConfig     `koanf:"log"`
	Notice  NoticeConfig  `koanf:"notice"`
	Stats   StatsConfig   `koanf:"stats"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "text" or "json"
}

type NoticeConfig struct {
	Sink string `koanf:"sink"` // "osd", "desktop" or "both"
}

type StatsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // empty means the XDG data directory
}

type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:9477"; empty disables
}

var defaultCategories = []string{"sponsor", "selfpromo", "interaction", "exclusive_access", "poi_highlight"}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		ServerAddress:  sponsorblock.DefaultServer,
		Mute:           true,
		SkipNotice:     true,
		RequestTimeout: 10,
		CacheSize:      sponsorblock.DefaultCacheSize,
		Socket:         "/tmp/mpvsocket",
		POIMessage:     "sponsorblock-poi",
		Log:            LogConfig{Level: "info", Format: "text"},
		Notice:         NoticeConfig{Sink: SinkOSD},
		Stats:          StatsConfig{Enabled: true},
	}
}

// Load reads the configuration files. When explicit is set it is the only
// file read and it must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	var configPaths []string
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, err
		}
		configPaths = []string{explicit}
	} else {
		// Try config files in order of priority (last wins)
		configPaths = getConfigPaths()
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.ServerAddress = strings.TrimSuffix(c.ServerAddress, "/")
	if c.ServerAddress == "" {
		c.ServerAddress = sponsorblock.DefaultServer
	}
	if len(c.Categories) == 0 {
		c.Categories = append([]string(nil), defaultCategories...)
	}
	if _, err := c.LookupCategories(); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 10
	}
	if c.CacheSize < 0 {
		c.CacheSize = 0
	}

	switch c.Notice.Sink {
	case "":
		c.Notice.Sink = SinkOSD
	case SinkOSD, SinkDesktop, SinkBoth:
	default:
		return fmt.Errorf("notice.sink: unknown sink %q", c.Notice.Sink)
	}

	if lvl := os.Getenv(logger.EnvLevel); lvl != "" {
		c.Log.Level = lvl
	}

	c.Socket = expandPath(c.Socket)
	c.Stats.Path = expandPath(c.Stats.Path)
	return nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/mpv/sponsorblock.toml
		filepath.Join(xdg.ConfigHome, "mpv", fileName),
		// 2. ./sponsorblock.toml (pwd, highest priority)
		fileName,
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LookupCategories parses the configured category names.
func (c *Config) LookupCategories() ([]sponsorblock.Category, error) {
	cats := make([]sponsorblock.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		cat, err := sponsorblock.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("categories: %w", err)
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// LookupActions returns the action types to request. Skip, full and poi are
// always requested; mute only when enabled.
func (c *Config) LookupActions() []sponsorblock.Action {
	actions := []sponsorblock.Action{sponsorblock.ActionSkip}
	if c.Mute {
		actions = append(actions, sponsorblock.ActionMute)
	}
	return append(actions, sponsorblock.ActionFull, sponsorblock.ActionPoi)
}

// Timeout returns request_timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// HasMetrics returns true if the metrics listener is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Listen != ""
}

// UseOSD reports whether notices go to the mpv OSD.
func (c *Config) UseOSD() bool {
	return c.Notice.Sink == SinkOSD || c.Notice.Sink == SinkBoth
}

// UseDesktop reports whether notices go to desktop notifications.
func (c *Config) UseDesktop() bool {
	return c.Notice.Sink == SinkDesktop || c.Notice.Sink == SinkBoth
}
