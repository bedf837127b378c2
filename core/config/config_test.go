package config_test

import (
	"os"
	"testing"

	"github.com/conduithq/conduit/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port int    `env:"TEST_CONFIG_PORT" envDefault:"8080"`
	Name string `env:"TEST_CONFIG_NAME,required"`
}

func TestLoad(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_CONFIG_NAME", "conduit")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "conduit", cfg.Name)
}

func TestLoad_MissingRequired(t *testing.T) {
	config.Reset()
	require.NoError(t, os.Unsetenv("TEST_CONFIG_NAME"))

	var cfg testConfig
	assert.Error(t, config.Load(&cfg))
}

func TestLoad_Caching(t *testing.T) {
	config.Reset()
	t.Setenv("TEST_CONFIG_NAME", "first")

	var cfg1 testConfig
	require.NoError(t, config.Load(&cfg1))

	t.Setenv("TEST_CONFIG_NAME", "second")

	var cfg2 testConfig
	require.NoError(t, config.Load(&cfg2))
	assert.Equal(t, cfg1.Name, cfg2.Name, "second Load call should return the cached value, not re-read the environment")
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	config.Reset()
	require.NoError(t, os.Unsetenv("TEST_CONFIG_NAME"))

	var cfg testConfig
	assert.Panics(t, func() { config.MustLoad(&cfg) })
}
