// Package config loads hecdss settings from a YAML file and HECDSS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jpl-au/hecdss/store"
)

// Defaults applied before the config file and environment are read.
const (
	DefaultHashAlgorithm = "xxh3"
	DefaultCompression   = "zstd"
	DefaultReadBuffer    = "64KiB"
	DefaultMaxRecordSize = "16MiB"
	DefaultSyncWrites    = false
	DefaultBloom         = true
	DefaultLogLevel      = "info"
)

// Config is the top-level configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig holds the settings of the file engine. Sizes accept
// human-readable forms such as "16MiB".
type StoreConfig struct {
	HashAlgorithm string `mapstructure:"hash_algorithm"`
	Compression   string `mapstructure:"compression"`
	ReadBuffer    string `mapstructure:"read_buffer"`
	MaxRecordSize string `mapstructure:"max_record_size"`
	SyncWrites    bool   `mapstructure:"sync_writes"`
	Bloom         bool   `mapstructure:"bloom"`
}

// LogConfig holds the log level callers may apply to their handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidHashAlgorithm indicates an unknown store.hash_algorithm.
	ErrInvalidHashAlgorithm = errors.New("store.hash_algorithm must be xxh3, fnv1a or blake2b")
	// ErrInvalidCompression indicates an unknown store.compression.
	ErrInvalidCompression = errors.New("store.compression must be zstd or lz4")
	// ErrInvalidSize indicates a size that does not parse or is zero.
	ErrInvalidSize = errors.New("size must be a positive byte count")
	// ErrInvalidLogLevel indicates an unknown log.level.
	ErrInvalidLogLevel = errors.New("log.level must be debug, info, warn or error")
)

var hashAlgorithms = map[string]int{
	"xxh3":    store.AlgXXHash3,
	"fnv1a":   store.AlgFNV1a,
	"blake2b": store.AlgBlake2b,
}

var codecs = map[string]int{
	"zstd": store.CompressZstd,
	"lz4":  store.CompressLZ4,
}

// Validate checks every field. Empty values are allowed and mean the
// engine default.
func (c *Config) Validate() error {
	if _, ok := lookup(hashAlgorithms, c.Store.HashAlgorithm); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidHashAlgorithm, c.Store.HashAlgorithm)
	}
	if _, ok := lookup(codecs, c.Store.Compression); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCompression, c.Store.Compression)
	}
	if _, err := parseSize("store.read_buffer", c.Store.ReadBuffer); err != nil {
		return err
	}
	if _, err := parseSize("store.max_record_size", c.Store.MaxRecordSize); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// StoreConfig converts the store settings into a store.Config.
func (c *Config) StoreConfig() (store.Config, error) {
	alg, ok := lookup(hashAlgorithms, c.Store.HashAlgorithm)
	if !ok {
		return store.Config{}, fmt.Errorf("%w: %q", ErrInvalidHashAlgorithm, c.Store.HashAlgorithm)
	}
	codec, ok := lookup(codecs, c.Store.Compression)
	if !ok {
		return store.Config{}, fmt.Errorf("%w: %q", ErrInvalidCompression, c.Store.Compression)
	}
	readBuffer, err := parseSize("store.read_buffer", c.Store.ReadBuffer)
	if err != nil {
		return store.Config{}, err
	}
	maxRecord, err := parseSize("store.max_record_size", c.Store.MaxRecordSize)
	if err != nil {
		return store.Config{}, err
	}

	return store.Config{
		HashAlgorithm: alg,
		Compression:   codec,
		ReadBuffer:    readBuffer,
		MaxRecordSize: maxRecord,
		SyncWrites:    c.Store.SyncWrites,
		DisableBloom:  !c.Store.Bloom,
	}, nil
}

// LogLevel parses log.level. Empty means info.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return level, nil
}

// lookup maps a name to its engine constant; empty maps to 0, which the
// engine replaces with its default.
func lookup(table map[string]int, name string) (int, bool) {
	if name == "" {
		return 0, true
	}
	v, ok := table[strings.ToLower(name)]
	return v, ok
}

func parseSize(key, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(text)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s: %w: %q", key, ErrInvalidSize, text)
	}
	return int(n), nil
}
