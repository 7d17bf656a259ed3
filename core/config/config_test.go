package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/config"
)

// Config types are cached per type, so each test uses its own struct type.

func TestLoad(t *testing.T) {
	t.Run("parses env with defaults", func(t *testing.T) {
		type serverCfg struct {
			Addr    string        `env:"TEST_CFG_ADDR" envDefault:":8080"`
			Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
		}

		t.Setenv("TEST_CFG_ADDR", ":9090")

		var cfg serverCfg
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("caches per type", func(t *testing.T) {
		type cachedCfg struct {
			Value string `env:"TEST_CFG_CACHED" envDefault:"first"`
		}

		t.Setenv("TEST_CFG_CACHED", "first")
		var first cachedCfg
		require.NoError(t, config.Load(&first))

		// Env changes after the first load are not observed.
		t.Setenv("TEST_CFG_CACHED", "second")
		var second cachedCfg
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("required variable missing", func(t *testing.T) {
		type requiredCfg struct {
			Secret string `env:"TEST_CFG_REQUIRED,required"`
		}

		var cfg requiredCfg
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEST_CFG_REQUIRED")
	})

	t.Run("rejects non-pointer", func(t *testing.T) {
		type plainCfg struct {
			Value string `env:"TEST_CFG_PLAIN"`
		}

		assert.Error(t, config.Load(plainCfg{}))
		assert.Error(t, config.Load(nil))
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on invalid input", func(t *testing.T) {
		assert.Panics(t, func() {
			config.MustLoad(nil)
		})
	})

	t.Run("returns on success", func(t *testing.T) {
		type okCfg struct {
			Workers int `env:"TEST_CFG_WORKERS" envDefault:"4"`
		}

		var cfg okCfg
		assert.NotPanics(t, func() {
			config.MustLoad(&cfg)
		})
		assert.Equal(t, 4, cfg.Workers)
	})
}
