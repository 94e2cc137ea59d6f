package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "regnav"
	configFileType = "yaml"
	envPrefix      = "REGNAV"

	cfgKeySource    = "source"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogDir    = "log_dir"
	cfgKeySeparator = "separator"
	cfgKeyMaxDepth  = "max_depth"

	defaultLogLevel = "info"
)

// settings is the resolved configuration.
type settings struct {
	Source    string
	LogLevel  string
	LogDir    string
	Separator string // display/input separator; empty keeps the backend's
	MaxDepth  int    // default traversal depth; 0 means unlimited
}

func defaultSettings() settings {
	return settings{LogLevel: defaultLogLevel}
}

// loadConfig reads regnav.yaml with Viper. An explicit path must exist; the
// default search locations are optional. REGNAV_* environment variables and
// the --source flag override file values.
func loadConfig(path string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyMaxDepth, 0)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "regnav"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if f := flags.Lookup("source"); f != nil && f.Changed {
			if err := v.BindPFlag(cfgKeySource, f); err != nil {
				return nil, fmt.Errorf("bind flag: %w", err)
			}
		}
	}
	return v, nil
}

func settingsFrom(v *viper.Viper) settings {
	return settings{
		Source:    v.GetString(cfgKeySource),
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogDir:    v.GetString(cfgKeyLogDir),
		Separator: v.GetString(cfgKeySeparator),
		MaxDepth:  v.GetInt(cfgKeyMaxDepth),
	}
}
