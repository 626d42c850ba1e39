package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/config"
)

type defaultsConfig struct {
	Addr    string        `env:"CFG_TEST_DEFAULT_ADDR" envDefault:":8080"`
	Timeout time.Duration `env:"CFG_TEST_DEFAULT_TIMEOUT" envDefault:"10s"`
}

type overrideConfig struct {
	Name  string   `env:"CFG_TEST_OVERRIDE_NAME" envDefault:"default"`
	Tiers []string `env:"CFG_TEST_OVERRIDE_TIERS" envSeparator:","`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED" envDefault:"first"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

type fileConfig struct {
	FromFile string `env:"CFG_TEST_FROM_FILE"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("CFG_TEST_OVERRIDE_NAME", "summarist")
		t.Setenv("CFG_TEST_OVERRIDE_TIERS", "premium,premium_plus")

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "summarist", cfg.Name)
		assert.Equal(t, []string{"premium", "premium_plus"}, cfg.Tiers)
	})

	t.Run("parsed once per type", func(t *testing.T) {
		var first cachedConfig
		require.NoError(t, config.Load(&first))

		t.Setenv("CFG_TEST_CACHED", "second")
		var second cachedConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Value)
	})

	t.Run("missing required value", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)

		t.Setenv("CFG_TEST_REQUIRED_SECRET", "s3cr3t")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cr3t", cfg.Secret)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[defaultsConfig](nil), config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	type mustConfig struct {
		Value string `env:"CFG_TEST_MUST_VALUE,required"`
	}
	assert.Panics(t, func() {
		var cfg mustConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_FROM_FILE=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CFG_TEST_FROM_FILE") })

	require.NoError(t, config.LoadFiles(path))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "loaded", cfg.FromFile)

	assert.ErrorIs(t, config.LoadFiles(filepath.Join(t.TempDir(), "missing.env")), config.ErrLoadingEnvFile)
	assert.NoError(t, config.LoadFiles())
}
