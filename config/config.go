// Package config loads sfxgraph settings from defaults, an optional YAML
// file and SFXGRAPH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/sfxgraph/sfxgraph/render"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "SFXGRAPH"
	FileName  = "sfxgraph"
)

type (
	Config struct {
		SampleRate int          `mapstructure:"sample_rate"`
		OutputDir  string       `mapstructure:"output_dir"`
		PresetsDir string       `mapstructure:"presets_dir"`
		Server     ServerConfig `mapstructure:"server"`
		Watch      WatchConfig  `mapstructure:"watch"`
		Play       PlayConfig   `mapstructure:"play"`
	}

	ServerConfig struct {
		Addr string `mapstructure:"addr"`
	}

	WatchConfig struct {
		Debounce time.Duration `mapstructure:"debounce"`
	}

	PlayConfig struct {
		Autoplay bool `mapstructure:"autoplay"`
	}
)

// New returns a viper instance with the defaults, the search paths and the
// environment bindings set up, but nothing read yet. An empty path searches
// the working directory and the user config directory for sfxgraph.yaml.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, FileName))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("sample_rate", render.DefaultSampleRate)
	v.SetDefault("output_dir", "")
	v.SetDefault("presets_dir", presets.DefaultUserDir())
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("watch.debounce", 150*time.Millisecond)
	v.SetDefault("play.autoplay", true)
}

// Read reads the config file, if there is one, and decodes the settings. A
// missing file is only an error when it was asked for explicitly.
func Read(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load is New followed by Read.
func Load(path string) (Config, error) {
	return Read(New(path))
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate %d: must be positive", c.SampleRate)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("invalid watch.debounce %v: must not be negative", c.Watch.Debounce)
	}
	return nil
}
