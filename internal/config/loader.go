package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".hecdss"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix, as in HECDSS_STORE_COMPRESSION.
const envPrefix = "HECDSS"

// Load reads configuration from defaults, then the config file, then the
// environment. With an empty path the file is searched for in the working
// directory and $HOME; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("store.hash_algorithm", DefaultHashAlgorithm)
	v.SetDefault("store.compression", DefaultCompression)
	v.SetDefault("store.read_buffer", DefaultReadBuffer)
	v.SetDefault("store.max_record_size", DefaultMaxRecordSize)
	v.SetDefault("store.sync_writes", DefaultSyncWrites)
	v.SetDefault("store.bloom", DefaultBloom)
	v.SetDefault("log.level", DefaultLogLevel)
}
