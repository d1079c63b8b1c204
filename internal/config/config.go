// Package config provides Viper-based configuration loading for the
// Aventuro player.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GameConfig holds settings passed to the engine.
type GameConfig struct {
	// SaveDir is where /save and /load keep their files.
	SaveDir string `mapstructure:"save_dir"`
	// Seed fixes the random source. Zero seeds from the clock.
	Seed int64 `mapstructure:"seed"`
	// MaxCarryWeight is the total weight the player can carry.
	MaxCarryWeight int `mapstructure:"max_carry_weight"`
}

// UIConfig holds front-end settings.
type UIConfig struct {
	Plain bool `mapstructure:"plain"`
	Trace bool `mapstructure:"trace"`
	// WrapWidth is the column at which messages are wrapped, 0 to disable.
	WrapWidth int `mapstructure:"wrap_width"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	UI      UIConfig      `mapstructure:"ui"`
}

// Validate checks all configuration invariants and reports every
// violation at once.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateUI(c.UI); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.SaveDir == "" {
		errs = append(errs, "game.save_dir must not be empty")
	}
	if g.Seed < 0 {
		errs = append(errs, fmt.Sprintf("game.seed must be >= 0, got %d", g.Seed))
	}
	if g.MaxCarryWeight < 1 {
		errs = append(errs, fmt.Sprintf("game.max_carry_weight must be >= 1, got %d", g.MaxCarryWeight))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateUI(u UIConfig) error {
	if u.WrapWidth != 0 && u.WrapWidth < MinWrapWidth {
		return fmt.Errorf("ui.wrap_width must be 0 or >= %d, got %d", MinWrapWidth, u.WrapWidth)
	}
	return nil
}

// MinWrapWidth is the narrowest wrap column accepted.
const MinWrapWidth = 20

// Load reads configuration from the given YAML file, applies environment
// variable overrides (AVENTURO_GAME_SEED and so on) and validates the
// result. An empty path uses the defaults and the environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("AVENTURO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "warn", Format: "console"},
		Game:    GameConfig{SaveDir: ".", MaxCarryWeight: 100},
		UI:      UIConfig{WrapWidth: 78},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("game.save_dir", d.Game.SaveDir)
	v.SetDefault("game.seed", d.Game.Seed)
	v.SetDefault("game.max_carry_weight", d.Game.MaxCarryWeight)

	v.SetDefault("ui.plain", d.UI.Plain)
	v.SetDefault("ui.wrap_width", d.UI.WrapWidth)
	v.SetDefault("ui.trace", d.UI.Trace)
}
