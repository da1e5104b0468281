package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sfxgraph/sfxgraph/config"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)
	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Config{
		SampleRate: 48000,
		PresetsDir: filepath.Join(dir, "sfxgraph", "presets"),
		Server:     config.ServerConfig{Addr: ":8080"},
		Watch:      config.WatchConfig{Debounce: 150 * time.Millisecond},
		Play:       config.PlayConfig{Autoplay: true},
	}, c)
}

func TestFileAndEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	yml := "sample_rate: 44100\noutput_dir: out\nwatch:\n  debounce: 1s\nplay:\n  autoplay: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("SFXGRAPH_SERVER_ADDR", "127.0.0.1:9000")

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 44100, c.SampleRate)
	require.Equal(t, "out", c.OutputDir)
	require.Equal(t, time.Second, c.Watch.Debounce)
	require.False(t, c.Play.Autoplay)
	require.Equal(t, "127.0.0.1:9000", c.Server.Addr)
}

func TestSearchesUserConfigDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sfxgraph"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sfxgraph", "sfxgraph.yaml"), []byte("presets_dir: /tmp/sounds\n"), 0644))
	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "/tmp/sounds", c.PresetsDir)
}

func TestInvalidConfig(t *testing.T) {
	dir := isolate(t)
	_, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	t.Setenv("SFXGRAPH_SAMPLE_RATE", "-1")
	_, err = config.Load("")
	require.ErrorContains(t, err, "sample_rate")
}
