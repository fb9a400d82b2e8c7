package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfgFile := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("data_dir: "+dir+"\n"), 0o644))

		cfg, err := Load(viper.New(), cfgFile)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.DataDir)
		assert.Equal(t, filepath.Join(dir, "catalog.db"), cfg.Database)
		assert.Equal(t, filepath.Join(dir, "deferred.json"), cfg.DeferredFile)
		assert.Equal(t, PowerSourceAuto, cfg.Power.Source)
		assert.Equal(t, "org.freedesktop.ScreenSaver", cfg.Power.ScreenSaverService)
		assert.True(t, cfg.Alarms.Exact)
		assert.True(t, cfg.Hotkeys)
		assert.False(t, cfg.Debug)
		assert.Equal(t, cfgFile, cfg.ConfigFileUsed)
	})

	t.Run("FileValues", func(t *testing.T) {
		dir := t.TempDir()
		cfgFile := filepath.Join(dir, "config.yaml")
		content := `
data_dir: ` + dir + `
database: ` + filepath.Join(dir, "albums.db") + `
hotkeys: false
power:
  source: static
  static_interactive: false
alarms:
  exact: false
`
		require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

		cfg, err := Load(viper.New(), cfgFile)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "albums.db"), cfg.Database)
		assert.False(t, cfg.Hotkeys)
		assert.Equal(t, PowerSourceStatic, cfg.Power.Source)
		assert.False(t, cfg.Power.StaticInteractive)
		assert.False(t, cfg.Alarms.Exact)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		dir := t.TempDir()
		cfgFile := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("debug: false\n"), 0o644))
		t.Setenv("PAPERIZE_DEBUG", "true")
		t.Setenv("PAPERIZE_POWER_SOURCE", "dbus")

		cfg, err := Load(viper.New(), cfgFile)
		require.NoError(t, err)

		assert.True(t, cfg.Debug)
		assert.Equal(t, PowerSourceDBus, cfg.Power.Source)
	})

	t.Run("InvalidPowerSource", func(t *testing.T) {
		dir := t.TempDir()
		cfgFile := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("power:\n  source: magic\n"), 0o644))

		_, err := Load(viper.New(), cfgFile)
		assert.Error(t, err)
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
