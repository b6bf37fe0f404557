// SPDX-License-Identifier: EPL-2.0

// Package voice abstracts the hardware voices the pool schedules sources
// onto.
//
// A Device hands out Voices in its canonical format. A voice plays either
// one bound buffer (optionally looping) or a queue of stream buffers.
// Buffers in any 8/16-bit mono/stereo format are converted to the device
// format on Bind and Queue.
//
// Two devices are provided: Oto drives the system output through
// github.com/ebitengine/oto/v3, and Offline mixes in software for headless
// rendering and tests.
package voice

import (
	"fmt"

	"github.com/ik5/audplay/audio"
)

// State of a voice.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Device creates voices that share one output.
type Device interface {
	NewVoice() (Voice, error)
	// Format is the canonical PCM format voices are mixed in.
	Format() audio.Format
	Close() error
}

// Voice is one hardware playback channel.
type Voice interface {
	// Bind replaces everything pending with a single static buffer.
	Bind(data []byte, format audio.Format, loop bool) error
	// Queue appends a copy of data as a stream buffer.
	Queue(data []byte, format audio.Format) error
	// Processed returns the number of queued buffers fully consumed since the
	// previous call.
	Processed() int

	Play()
	Pause()
	// Stop halts playback, drops everything pending and resets SampleOffset.
	Stop()
	// State is Stopped once a non-looping bound buffer has been played out.
	State() State

	// SampleOffset is the number of device frames played since the last
	// Bind or Stop. Silence played while starved is not counted.
	SampleOffset() int64
	SetVolume(v float64)

	Close() error
}

// convert brings data to the device format, always returning a new slice.
func convert(data []byte, from, to audio.Format) ([]byte, error) {
	if !from.Valid() {
		return nil, ErrUnsupportedFormat
	}
	if from == to {
		return append([]byte(nil), data...), nil
	}
	out, err := audio.ConvertPCM(data, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	return out, nil
}
