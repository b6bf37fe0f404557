// SPDX-License-Identifier: EPL-2.0

// Package config holds the engine settings shared by the playback context
// and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// StreamMode names how streamed sources reach the hardware.
type StreamMode string

const (
	// StreamMixed shares the pool's single queue voice through the mixer.
	StreamMixed StreamMode = "mixed"
	// StreamExclusive gives each stream its own voice.
	StreamExclusive StreamMode = "exclusive"
)

// Config holds the engine configuration.
type Config struct {
	SampleRate int // canonical mix rate in Hz

	Tick           time.Duration // audio span per mixed buffer
	UpdateInterval time.Duration // async pool update period

	Voices        int // hardware voices shared by exclusive sources
	QueueBuffers  int // buffers kept queued on the mix voice
	StreamBuffers int // OutputBuffer slots per stream

	DecodeBufferSize int // decoder chunk size in bytes
	StreamMode       StreamMode
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleRate:       44100,
		Tick:             10 * time.Millisecond,
		UpdateInterval:   5 * time.Millisecond,
		Voices:           16,
		QueueBuffers:     2,
		StreamBuffers:    4,
		DecodeBufferSize: 2048,
		StreamMode:       StreamMixed,
	}
}

// Load reads configuration from AUDPLAY_* environment variables, falling
// back to Default for anything unset or unparsable.
func Load() Config {
	def := Default()
	return Config{
		SampleRate:       envInt("AUDPLAY_SAMPLE_RATE", def.SampleRate),
		Tick:             envDuration("AUDPLAY_TICK", def.Tick),
		UpdateInterval:   envDuration("AUDPLAY_UPDATE_INTERVAL", def.UpdateInterval),
		Voices:           envInt("AUDPLAY_VOICES", def.Voices),
		QueueBuffers:     envInt("AUDPLAY_QUEUE_BUFFERS", def.QueueBuffers),
		StreamBuffers:    envInt("AUDPLAY_STREAM_BUFFERS", def.StreamBuffers),
		DecodeBufferSize: envInt("AUDPLAY_DECODE_BUFFER_SIZE", def.DecodeBufferSize),
		StreamMode:       StreamMode(strings.ToLower(envStr("AUDPLAY_STREAM_MODE", string(def.StreamMode)))),
	}
}

// Validate reports the first setting the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalid, c.SampleRate)
	case c.Tick <= 0 || int(float64(c.SampleRate)*c.Tick.Seconds()) < 1:
		return fmt.Errorf("%w: tick %s is shorter than one frame", ErrInvalid, c.Tick)
	case c.UpdateInterval <= 0:
		return fmt.Errorf("%w: update interval %s", ErrInvalid, c.UpdateInterval)
	case c.Voices < 0:
		return fmt.Errorf("%w: %d voices", ErrInvalid, c.Voices)
	case c.QueueBuffers < 1:
		return fmt.Errorf("%w: %d queue buffers", ErrInvalid, c.QueueBuffers)
	case c.StreamBuffers < 1:
		return fmt.Errorf("%w: %d stream buffers", ErrInvalid, c.StreamBuffers)
	case c.DecodeBufferSize < 4:
		return fmt.Errorf("%w: decode buffer of %d bytes", ErrInvalid, c.DecodeBufferSize)
	case c.StreamMode != StreamMixed && c.StreamMode != StreamExclusive:
		return fmt.Errorf("%w: stream mode %q", ErrInvalid, c.StreamMode)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
