package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvPort, EnvSentryDSN, EnvSentryEnvironment, EnvPitchBendSensitivity, EnvLyricEncoding, EnvResampleInterval} {
		if v, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, v) })
		}
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDotenvAndEnvironment(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "SVSBRIDGE_PORT=9090\nSVSBRIDGE_LYRIC_ENCODING=shift-jis\nSENTRY_DSN=https://key@sentry.example/1\n")
	t.Setenv(EnvPort, "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port, "the environment wins over .env")
	assert.Equal(t, "shift-jis", cfg.LyricEncoding)
	assert.Equal(t, "https://key@sentry.example/1", cfg.SentryDSN)

	opts := cfg.MIDIOptions()
	assert.Equal(t, "shift-jis", opts.LyricEncoding)
	assert.Equal(t, 2, opts.PitchBendSensitivity)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port not a number", EnvPort, "eighty"},
		{"port zero", EnvPort, "0"},
		{"negative resample", EnvResampleInterval, "-1"},
		{"unknown encoding", EnvLyricEncoding, "latin-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
