// Package config loads engine settings with viper and the list of active
// resource modules with yaml.v3.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nathoo/turncore/engine"
)

// EnvPrefix prefixes every environment override, e.g. TURNCORE_ROUND_MILLIS.
const EnvPrefix = "TURNCORE"

// Config holds the engine settings.
type Config struct {
	// AnimBaseMillis scales every animation: move, melee and projectile
	// speeds are derived from it.
	AnimBaseMillis int `mapstructure:"anim_base_millis"`
	// RoundMillis is how long a round lasts outside combat.
	RoundMillis int `mapstructure:"round_millis"`
	// FrameMillis is the update step used by the frame drivers.
	FrameMillis int    `mapstructure:"frame_millis"`
	Seed        int64  `mapstructure:"seed"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	SaveDB      string `mapstructure:"save_db"`
	Resources   string `mapstructure:"resources"`
	BaseModule  string `mapstructure:"base_module"`
}

// Defaults applied before the config file and environment.
var Defaults = map[string]any{
	"anim_base_millis": 50,
	"round_millis":     5000,
	"frame_millis":     50,
	"seed":             0,
	"log_level":        "",
	"log_format":       "",
	"save_db":          "turncore.db",
	"resources":        "resources.yaml",
	"base_module":      "modules/demo",
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, if any, over the defaults. An empty
// path looks for turncore.yaml in the working directory; a missing file
// there is not an error.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("turncore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and checks the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if c.AnimBaseMillis <= 0 {
		return nil, fmt.Errorf("anim_base_millis must be positive, got %d", c.AnimBaseMillis)
	}
	if c.RoundMillis <= 0 {
		return nil, fmt.Errorf("round_millis must be positive, got %d", c.RoundMillis)
	}
	if c.FrameMillis <= 0 {
		return nil, fmt.Errorf("frame_millis must be positive, got %d", c.FrameMillis)
	}
	return &c, nil
}

// Timing derives animation speeds from AnimBaseMillis.
func (c *Config) Timing() engine.Timing {
	return engine.Timing{
		MoveMillisPerSquare:       3 * c.AnimBaseMillis,
		MeleeMillis:               8 * c.AnimBaseMillis,
		ProjectileMillisPerSquare: c.AnimBaseMillis,
	}
}

// EngineOptions returns the engine options these settings imply.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithSeed(c.Seed),
		engine.WithTiming(c.Timing()),
		engine.WithRoundMillis(c.RoundMillis),
	}
}
