package config

import (
	"fmt"
	"strings"

	"gridsnake/game/types"

	"github.com/spf13/viper"
)

const EnvPrefix = "GRIDSNAKE"

// Frontends understood by the command.
const (
	FrontendRaylib   = "raylib"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

type Configuration struct {
	Difficulty string       `mapstructure:"difficulty"`
	Frontend   string       `mapstructure:"frontend"`
	Seed       uint64       `mapstructure:"seed"`
	Autopilot  bool         `mapstructure:"autopilot"`
	LogConf    LogConf      `mapstructure:"log"`
	Window     WindowConf   `mapstructure:"window"`
	Spectate   SpectateConf `mapstructure:"spectate"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type WindowConf struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	FPS    int `mapstructure:"fps"`
}

// SpectateConf enables the websocket snapshot feed when Addr is set.
// Debug also serves the runtime dashboard on the same address.
type SpectateConf struct {
	Addr  string `mapstructure:"addr"`
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// DifficultyLevel parses the configured difficulty.
func (c *Configuration) DifficultyLevel() (types.Difficulty, error) {
	return types.ParseDifficulty(c.Difficulty)
}

// Validate rejects values the command cannot act on.
func (c *Configuration) Validate() error {
	if _, err := c.DifficultyLevel(); err != nil {
		return err
	}
	switch c.Frontend {
	case FrontendRaylib, FrontendTerminal, FrontendHeadless:
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	if c.Spectate.Path == "" || c.Spectate.Path[0] != '/' {
		return fmt.Errorf("spectate path %q must start with /", c.Spectate.Path)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 || c.Window.FPS <= 0 {
		return fmt.Errorf("invalid window %dx%d@%d", c.Window.Width, c.Window.Height, c.Window.FPS)
	}
	return nil
}

// New returns a viper instance with defaults and environment overrides
// (GRIDSNAKE_DIFFICULTY, GRIDSNAKE_LOG_LEVEL, ...). Callers may bind flags
// before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("difficulty", types.Easy.String())
	v.SetDefault("frontend", FrontendRaylib)
	v.SetDefault("seed", 0)
	v.SetDefault("autopilot", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("window.width", 800)
	v.SetDefault("window.height", 860)
	v.SetDefault("window.fps", 60)
	v.SetDefault("spectate.addr", "")
	v.SetDefault("spectate.path", "/ws")
	v.SetDefault("spectate.debug", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if any) into v and decodes the result.
func Load(v *viper.Viper, configFile string) (*Configuration, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Frontend = strings.ToLower(cfg.Frontend)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
