package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Server      ServerConfig      `mapstructure:"server"`
	Replay      ReplayConfig      `mapstructure:"replay"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	Map          MapConfig   `mapstructure:"map"`
	Spawn        SpawnConfig `mapstructure:"spawn"`
	ActionPoints int         `mapstructure:"action_points"`
	Units        UnitsConfig `mapstructure:"units"`
}

// MapConfig holds the lane map dimensions. (Width-1) and (Height-1) must be
// divisible by RatioX and RatioY respectively.
type MapConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	RatioX int `mapstructure:"ratio_x"`
	RatioY int `mapstructure:"ratio_y"`
}

// SpawnConfig controls how often forts produce soldiers
type SpawnConfig struct {
	Interval int `mapstructure:"interval"`
	Count    int `mapstructure:"count"`
}

// UnitsConfig holds base stats for every unit kind
type UnitsConfig struct {
	Tower   UnitStatsConfig `mapstructure:"tower"`
	Fort    UnitStatsConfig `mapstructure:"fort"`
	Soldier UnitStatsConfig `mapstructure:"soldier"`
}

// UnitStatsConfig holds the base stats of a single unit kind
type UnitStatsConfig struct {
	Health int `mapstructure:"health"`
	Vision int `mapstructure:"vision"`
	Hit    int `mapstructure:"hit"`
	Attack int `mapstructure:"attack"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Game        LocalGameConfig   `mapstructure:"game"`
	MatchServer MatchServerConfig `mapstructure:"match_server"`
	Spectator   SpectatorConfig   `mapstructure:"spectator"`
}

// LocalGameConfig holds settings for the headless local runner
type LocalGameConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	MaxTurns  int    `mapstructure:"max_turns"`
	Seed      int64  `mapstructure:"seed"`
}

// MatchServerConfig holds gRPC match server configuration
type MatchServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	MaxMatches            int    `mapstructure:"max_matches"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// SpectatorConfig holds the read-only HTTP and websocket endpoint settings
type SpectatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// ReplayConfig controls recording of per-turn game snapshots
type ReplayConfig struct {
	Type    string `mapstructure:"type"`
	BaseDir string `mapstructure:"base_dir"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Map defaults (36x21 at 7:4)
	v.SetDefault("game.map.width", 36)
	v.SetDefault("game.map.height", 21)
	v.SetDefault("game.map.ratio_x", 7)
	v.SetDefault("game.map.ratio_y", 4)

	// Spawn defaults
	v.SetDefault("game.spawn.interval", 10)
	v.SetDefault("game.spawn.count", 3)

	v.SetDefault("game.action_points", 1)

	// Unit base stats
	v.SetDefault("game.units.tower.health", 100)
	v.SetDefault("game.units.tower.vision", 2)
	v.SetDefault("game.units.tower.hit", 1)
	v.SetDefault("game.units.tower.attack", 5)

	v.SetDefault("game.units.fort.health", 150)
	v.SetDefault("game.units.fort.vision", 3)
	v.SetDefault("game.units.fort.hit", 1)
	v.SetDefault("game.units.fort.attack", 5)

	v.SetDefault("game.units.soldier.health", 3)
	v.SetDefault("game.units.soldier.vision", 2)
	v.SetDefault("game.units.soldier.hit", 1)
	v.SetDefault("game.units.soldier.attack", 1)

	// Local runner defaults
	v.SetDefault("server.game.log_level", "info")
	v.SetDefault("server.game.log_format", "console")
	v.SetDefault("server.game.max_turns", 200)
	v.SetDefault("server.game.seed", 0)

	// Match server defaults
	v.SetDefault("server.match_server.host", "0.0.0.0")
	v.SetDefault("server.match_server.port", 50051)
	v.SetDefault("server.match_server.log_level", "info")
	v.SetDefault("server.match_server.max_matches", 100)
	v.SetDefault("server.match_server.enable_reflection", true)
	v.SetDefault("server.match_server.graceful_shutdown_delay", 5)

	v.SetDefault("server.spectator.enabled", false)
	v.SetDefault("server.spectator.host", "0.0.0.0")
	v.SetDefault("server.spectator.port", 8080)

	v.SetDefault("replay.type", "none")
	v.SetDefault("replay.base_dir", "replays")

	v.SetDefault("development.verbose_logging", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mobai")
	}

	v.SetEnvPrefix("MOBAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit file falls back to defaults; for the default
		// search paths only ConfigFileNotFoundError is tolerated.
		if configPath == "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. Changes that fail
// validation are reported through onError and leave the previous values
// in place.
func WatchConfig(onChange func(), onError func(error)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		if err := Validate(next); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		cfg = next
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	m := c.Game.Map
	if m.RatioX <= 0 || m.RatioY <= 0 {
		return fmt.Errorf("game.map ratio must be positive")
	}
	if m.Width <= 1 || m.Height <= 1 {
		return fmt.Errorf("game.map dimensions must be greater than 1")
	}
	if (m.Width-1)%m.RatioX != 0 {
		return fmt.Errorf("game.map.width-1 must be divisible by game.map.ratio_x")
	}
	if (m.Height-1)%m.RatioY != 0 {
		return fmt.Errorf("game.map.height-1 must be divisible by game.map.ratio_y")
	}
	if m.Width%2 != 0 {
		return fmt.Errorf("game.map.width must be even")
	}

	if c.Game.Spawn.Interval <= 0 {
		return fmt.Errorf("game.spawn.interval must be positive")
	}
	if c.Game.Spawn.Count < 0 {
		return fmt.Errorf("game.spawn.count must be non-negative")
	}
	if c.Game.ActionPoints <= 0 {
		return fmt.Errorf("game.action_points must be positive")
	}

	validateStats := func(s UnitStatsConfig, name string) error {
		if s.Health <= 0 {
			return fmt.Errorf("game.units.%s.health must be positive", name)
		}
		if s.Vision < 0 || s.Hit < 0 || s.Attack < 0 {
			return fmt.Errorf("game.units.%s vision, hit and attack must be non-negative", name)
		}
		return nil
	}
	if err := validateStats(c.Game.Units.Tower, "tower"); err != nil {
		return err
	}
	if err := validateStats(c.Game.Units.Fort, "fort"); err != nil {
		return err
	}
	if err := validateStats(c.Game.Units.Soldier, "soldier"); err != nil {
		return err
	}

	if c.Server.Game.MaxTurns <= 0 {
		return fmt.Errorf("server.game.max_turns must be positive")
	}
	if c.Server.MatchServer.Port <= 0 || c.Server.MatchServer.Port > 65535 {
		return fmt.Errorf("server.match_server.port must be between 1 and 65535")
	}
	if c.Server.MatchServer.MaxMatches <= 0 {
		return fmt.Errorf("server.match_server.max_matches must be positive")
	}
	switch c.Replay.Type {
	case "none", "file":
	default:
		return fmt.Errorf("replay.type must be none or file, got %q", c.Replay.Type)
	}
	if c.Replay.Type == "file" && c.Replay.BaseDir == "" {
		return fmt.Errorf("replay.base_dir is required for file replays")
	}

	if c.Server.Spectator.Enabled && (c.Server.Spectator.Port <= 0 || c.Server.Spectator.Port > 65535) {
		return fmt.Errorf("server.spectator.port must be between 1 and 65535")
	}

	if c.Server.MatchServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.match_server.graceful_shutdown_delay must be non-negative")
	}

	return nil
}
