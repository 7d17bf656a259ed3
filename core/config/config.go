package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> parsed config value
)

// Load parses environment variables into cfg, which must be a non-nil
// pointer to a struct. The first call for a given struct type reads the
// environment; later calls return the cached value. A missing .env file is
// not an error.
func Load(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: expected non-nil struct pointer, got %T", cfg)
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	typ := v.Elem().Type()
	if cached, ok := cache.Load(typ); ok {
		v.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", typ, err)
	}

	// LoadOrStore keeps the first winner when two goroutines race the same type.
	actual, _ := cache.LoadOrStore(typ, v.Elem().Interface())
	v.Elem().Set(reflect.ValueOf(actual))
	return nil
}

// MustLoad is Load that panics on failure. Intended for application startup.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
