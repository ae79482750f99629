// Package config loads runtime settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/james-see/svsbridge/pkg/converter/formats"
)

// Environment variables read by Load.
const (
	EnvPort                 = "SVSBRIDGE_PORT"
	EnvSentryDSN            = "SENTRY_DSN"
	EnvSentryEnvironment    = "SENTRY_ENVIRONMENT"
	EnvPitchBendSensitivity = "SVSBRIDGE_PITCH_BEND_SENSITIVITY"
	EnvLyricEncoding        = "SVSBRIDGE_LYRIC_ENCODING"
	EnvResampleInterval     = "SVSBRIDGE_RESAMPLE_INTERVAL"
)

// Config contains the settings shared by the CLI, the TUI and the API server
type Config struct {
	Port              int
	SentryDSN         string // empty disables Sentry
	SentryEnvironment string

	PitchBendSensitivity int    // semitones
	LyricEncoding        string // utf-8 or shift-jis
	ResampleInterval     int    // ticks; 0 disables resampling
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Port:                 8080,
		SentryEnvironment:    "development",
		PitchBendSensitivity: 2,
		LyricEncoding:        formats.EncodingUTF8,
		ResampleInterval:     5,
	}
}

// Load starts from Default, then applies values from the given .env files
// (".env" when none is given) and finally the process environment, which
// wins over any file. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	dotenv := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range values {
			if _, ok := dotenv[k]; !ok {
				dotenv[k] = v
			}
		}
	}

	cfg := Default()
	err := cfg.apply(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
	return cfg, err
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
		min int
	}{
		{EnvPort, &c.Port, 1},
		{EnvPitchBendSensitivity, &c.PitchBendSensitivity, 1},
		{EnvResampleInterval, &c.ResampleInterval, 0},
	}
	for _, it := range ints {
		v, ok := lookup(it.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", it.key, err)
		}
		if n < it.min {
			return fmt.Errorf("%s: must be at least %d, got %d", it.key, it.min, n)
		}
		*it.dst = n
	}

	if v, ok := lookup(EnvSentryDSN); ok {
		c.SentryDSN = v
	}
	if v, ok := lookup(EnvSentryEnvironment); ok && v != "" {
		c.SentryEnvironment = v
	}
	if v, ok := lookup(EnvLyricEncoding); ok && v != "" {
		if _, err := formats.LookupEncoding(v); err != nil {
			return fmt.Errorf("%s: %w", EnvLyricEncoding, err)
		}
		c.LyricEncoding = v
	}
	return nil
}

// MIDIOptions returns the MIDI adapter options for this configuration
func (c Config) MIDIOptions() formats.MIDIOptions {
	opts := formats.DefaultMIDIOptions()
	opts.PitchBendSensitivity = c.PitchBendSensitivity
	opts.LyricEncoding = c.LyricEncoding
	return opts
}
