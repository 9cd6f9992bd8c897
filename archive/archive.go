// Package archive opens local archive files through the store engine with
// settings taken from a .hecdss.yaml file and HECDSS_* environment
// variables.
package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"

	"github.com/jpl-au/hecdss"
	"github.com/jpl-au/hecdss/internal/config"
	"github.com/jpl-au/hecdss/store"
)

// Options adjust Open. The zero value searches for the config file in the
// working directory and $HOME and logs text to stderr.
type Options struct {
	// ConfigPath names an explicit config file. It must exist.
	ConfigPath string
	// Output receives log records at the configured level.
	Output io.Writer
	// Meter is passed to the session.
	Meter metric.Meter
}

// Open loads configuration, builds a store engine from it and opens path.
// The engine is private to the returned session.
func Open(path string, opts Options) (*hecdss.Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	sc, err := cfg.StoreConfig()
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	sc.Logger = log.With("component", "store")

	s, err := hecdss.Open(store.New(sc), path, hecdss.Config{Logger: log, Meter: opts.Meter})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return s, nil
}
