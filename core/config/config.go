package config

import (
	"fmt"
	"os"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	cacheMu sync.Mutex
	cache   = make(map[reflect.Type]any)
)

// loadDotenv loads a .env file from the working directory, if one exists.
// It runs at most once per process; a missing file is not an error, since
// production deployments are expected to set real environment variables
// instead.
func loadDotenv() {
	dotenvOnce.Do(func() {
		if _, err := os.Stat(".env"); err == nil {
			_ = godotenv.Load()
		}
	})
}

// Load parses environment variables into cfg using struct tags ("env",
// "envDefault", "envSeparator", and so on, per caarlos0/env), loading a
// .env file first if one is present. The first successful Load for a
// given type T is cached; subsequent calls with the same T return the
// cached value without re-reading the environment.
func Load[T any](cfg *T) error {
	loadDotenv()

	t := reflect.TypeOf(*cfg)
	cacheMu.Lock()
	if cached, ok := cache[t]; ok {
		cacheMu.Unlock()
		*cfg = *(cached.(*T))
		return nil
	}
	cacheMu.Unlock()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment into %T: %w", *cfg, err)
	}

	cacheMu.Lock()
	cache[t] = cfg
	cacheMu.Unlock()

	return nil
}

// MustLoad is Load, panicking on failure. Intended for process startup,
// where a missing or invalid required variable should stop the process
// immediately.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset clears the cache, for use in tests that need Load to re-read the
// environment after mutating it.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = make(map[reflect.Type]any)
}
