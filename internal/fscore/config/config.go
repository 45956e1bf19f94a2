// Package config resolves the process's environment-variable configuration
// surface into a single bounds-checked struct, rather than scattering ad
// hoc env lookups through the rest of the code.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/mutagen-io/fscore/internal/fscore/logging"
)

const (
	defaultMaxSearchSize = 1 << 20        // 1 MiB
	minMaxSearchSize     = 100 * 1 << 10  // 100 KiB
	maxMaxSearchSize     = 10 << 20       // 10 MiB

	defaultMaxFileSize = 10 << 20 // 10 MiB
	minMaxFileSize      = 1 << 20  // 1 MiB
	maxMaxFileSize      = 100 << 20

	defaultSearchTimeout = 30 * time.Second
	minSearchTimeout     = 100 * time.Millisecond
	maxSearchTimeout      = time.Hour
)

// RuntimeConfig is the fully-resolved, bounds-checked runtime configuration.
// Load always returns a struct with every field populated, either from the
// environment or its default. The only zero a caller can observe is
// SearchWorkers, which SEARCH_WORKERS=0 sets explicitly.
type RuntimeConfig struct {
	MaxSearchSize        int64
	MaxFileSize          int64
	DefaultSearchTimeout time.Duration
	SearchWorkers        int
}

// Load reads and bounds-checks the four environment variables, logging a
// warning and falling back to the default for any value that fails to
// parse or falls outside its documented bounds.
func Load(log *logging.Logger) RuntimeConfig {
	cfg := RuntimeConfig{
		MaxSearchSize:        defaultMaxSearchSize,
		MaxFileSize:          defaultMaxFileSize,
		DefaultSearchTimeout: defaultSearchTimeout,
		SearchWorkers:        defaultWorkerCount(),
	}

	if v, ok := parseBytes(log, "MAX_SEARCH_SIZE", minMaxSearchSize, maxMaxSearchSize); ok {
		cfg.MaxSearchSize = v
	}
	if v, ok := parseBytes(log, "MAX_FILE_SIZE", minMaxFileSize, maxMaxFileSize); ok {
		cfg.MaxFileSize = v
	}
	if v, ok := parseDuration(log, "DEFAULT_SEARCH_TIMEOUT", minSearchTimeout, maxSearchTimeout); ok {
		cfg.DefaultSearchTimeout = v
	}
	if v, ok := parseWorkers(log); ok {
		cfg.SearchWorkers = v
	}

	return cfg
}

func defaultWorkerCount() int {
	n := runtime.NumCPU()
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

func parseBytes(log *logging.Logger, name string, min, max int64) (int64, bool) {
	raw, present := os.LookupEnv(name)
	if !present {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < min || n > max {
		log.Warn("%s=%q is out of bounds [%d, %d]; using default", name, raw, min, max)
		return 0, false
	}
	return n, true
}

func parseDuration(log *logging.Logger, name string, min, max time.Duration) (time.Duration, bool) {
	raw, present := os.LookupEnv(name)
	if !present {
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn("%s=%q is not a valid integer millisecond count; using default", name, raw)
		return 0, false
	}
	d := time.Duration(ms) * time.Millisecond
	if d < min || d > max {
		log.Warn("%s=%q is out of bounds [%s, %s]; using default", name, raw, min, max)
		return 0, false
	}
	return d, true
}

func parseWorkers(log *logging.Logger) (int, bool) {
	raw, present := os.LookupEnv("SEARCH_WORKERS")
	if !present {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Warn("SEARCH_WORKERS=%q is invalid; using default", raw)
		return 0, false
	}
	return n, true
}
