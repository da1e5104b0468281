package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

const sweepYAML = `name: Blip
duration: 0.05
nodes:
  - type: oscillator
    waveform: square
    frequency: {initialValue: 440}
    connections: [1]
  - type: gain
    gain: {initialValue: 0.5}
    connections: [-1]
`

func TestRenderPresetAndFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "blip_v2.yml")
	require.NoError(t, os.WriteFile(in, []byte(sweepYAML), 0644))
	out := filepath.Join(dir, "out")

	stdout, _, err := run(t, "render", "-o", out+string(filepath.Separator), "chirp", in)
	require.NoError(t, err)
	require.Contains(t, stdout, "Chirp: 0.200 s")
	require.Contains(t, stdout, "Blip: 0.050 s")

	info, err := os.Stat(filepath.Join(out, "chirp.wav"))
	require.NoError(t, err)
	require.Equal(t, int64(44+2*9600), info.Size())
	info, err = os.Stat(filepath.Join(out, "blip_v2.wav"))
	require.NoError(t, err)
	require.Equal(t, int64(44+2*2400), info.Size())
}

func TestRenderReportsBadInputs(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\nduration: 100\n"), 0644))
	_, stderr, err := run(t, "render", "-o", dir, bad, "no such preset", "sweep")
	require.Error(t, err)
	require.Contains(t, stderr, "bad.yml")
	require.Contains(t, stderr, "no such preset is neither a sound file nor a preset")
	require.FileExists(t, filepath.Join(dir, "sweep.wav"))
}

func TestRenderNeverOverwrite(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sweep.wav"), []byte("old"), 0644))
	_, _, err := run(t, "render", "-n", "-o", dir, "sweep")
	require.Error(t, err)
	stdout, _, err := run(t, "render", "-l", "-q", "-o", dir, "sweep")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "sweep.wav")+"\n", stdout)
}

func TestExport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	_, _, err := run(t, "export", "-o", dir, "shield recharge")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "shield_recharge.js"))
	require.FileExists(t, filepath.Join(dir, "shield_recharge.html"))

	stdout, _, err := run(t, "export", "-s", "-e", "js", "chirp")
	require.NoError(t, err)
	require.Contains(t, stdout, "export function buildChirp(ctx)")
	require.NotContains(t, stdout, "<html>")
}

func TestPresets(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	userDir := filepath.Join(dir, "presets")
	in := filepath.Join(dir, "blip.yml")
	require.NoError(t, os.WriteFile(in, []byte(sweepYAML), 0644))

	stdout, _, err := run(t, "--presets-dir", userDir, "presets", "save", "--name", "My Blip", in)
	require.NoError(t, err)
	require.Contains(t, stdout, filepath.Join(userDir, "my_blip.yml"))

	stdout, _, err = run(t, "--presets-dir", userDir, "presets", "list")
	require.NoError(t, err)
	require.Contains(t, stdout, "Noise Pulse")
	require.Regexp(t, `My Blip\s+user\s+0\.050 s`, stdout)

	stdout, _, err = run(t, "presets", "show", "--json", "sweep")
	require.NoError(t, err)
	require.Contains(t, stdout, `"name": "Sweep"`)
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("sample_rate: 8000\noutput_dir: "+filepath.Join(dir, "wavs")+"\n"), 0644))
	_, _, err := run(t, "--config", cfg, "render", "-q", "chirp")
	require.NoError(t, err)
	info, err := os.Stat(filepath.Join(dir, "wavs", "chirp.wav"))
	require.NoError(t, err)
	require.Equal(t, int64(44+2*1600), info.Size())

	_, _, err = run(t, "--config", cfg, "--sample-rate", "16000", "render", "-q", "chirp")
	require.NoError(t, err)
	info, err = os.Stat(filepath.Join(dir, "wavs", "chirp.wav"))
	require.NoError(t, err)
	require.Equal(t, int64(44+2*3200), info.Size())
}

func TestOutputTarget(t *testing.T) {
	dir := t.TempDir()
	o := output{dir: dir}
	f, err := o.target("sounds/zap.yml", ".wav")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "zap.wav"), f)

	o.path = filepath.Join(dir, "renamed.bin")
	f, err = o.target("zap.yml", ".wav")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "renamed.wav"), f)

	o.path = dir
	f, err = o.target("zap", ".js")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "zap.js"), f)
}
