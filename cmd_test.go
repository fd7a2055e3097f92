package main

import (
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/buzzword-bingo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Flags override config defaults", func(t *testing.T) {
		f := &flags{}
		cmd := newCmd(f)
		sub, _, err := cmd.Find([]string{"start"})
		require.NoError(t, err)

		// Given: a few flags on the command line and no config file
		missing := filepath.Join(t.TempDir(), "missing.yml")
		require.NoError(t, sub.ParseFlags([]string{"--config", missing, "-g", "office", "--xaxis", "3", "--redis-host", "redis"}))

		// When: loading the config
		conf, err := loadConfig(sub.Flags(), f)

		// Then: set flags win, the rest keeps its defaults
		require.NoError(t, err)
		assert.Equal(t, "office", conf.Game.Name)
		assert.Equal(t, 3, conf.Game.XAxis)
		assert.Equal(t, 5, conf.Game.YAxis)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Invalid values are rejected", func(t *testing.T) {
		f := &flags{}
		sub, _, err := newCmd(f).Find([]string{"join"})
		require.NoError(t, err)

		missing := filepath.Join(t.TempDir(), "missing.yml")
		require.NoError(t, sub.ParseFlags([]string{"--config", missing, "--yaxis", "0"}))

		_, err = loadConfig(sub.Flags(), f)

		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestInitLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bingo.log")

	logger, closeLog, err := initLogger(&config.Config{LogLevel: "warn", LogFile: path})
	require.NoError(t, err)
	defer closeLog()

	assert.NotNil(t, logger)
	assert.FileExists(t, path)
}
