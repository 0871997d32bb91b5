// Package config loads editor configuration from a YAML file and BMK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/eykd/blockmark/internal/editor"
)

// FileName is the config file name searched for when no path is given.
const FileName = "bmk"

// EnvPrefix prefixes environment overrides, e.g. BMK_MAX_LENGTH.
const EnvPrefix = "BMK"

// Dir returns the user-level config directory for bmk.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "bmk"), nil
}

// Load reads the editor configuration. An explicit path must exist; with an
// empty path, bmk.yaml is looked up in the working directory and then in
// Dir(), and a missing file leaves the defaults in place. Environment
// variables override file values.
func Load(path string) (editor.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	def := editor.DefaultConfig()
	v.SetDefault("editable", def.Editable)
	v.SetDefault("placeholder", def.Placeholder)
	v.SetDefault("max_length", def.MaxLength)
	v.SetDefault("auto_focus", def.AutoFocus)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return editor.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg editor.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return editor.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.MaxLength < 0 {
		return editor.Config{}, fmt.Errorf("decode config: max_length must not be negative, got %d", cfg.MaxLength)
	}
	return cfg, nil
}
