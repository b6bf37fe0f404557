// SPDX-License-Identifier: EPL-2.0

package audplay

import "errors"

var (
	// ErrVoiceLeak is returned by Close when a voice was never returned to the pool.
	ErrVoiceLeak = errors.New("voice not returned to the pool")
	// ErrNoDecoder is returned when no codec is registered for a file extension.
	ErrNoDecoder = errors.New("no decoder for file")
	// ErrInvalidMode is returned when a decoder source is created with ModeClip.
	ErrInvalidMode = errors.New("streams must be exclusive or mixed")
	// ErrClosed is returned by a Context or Pool used after Close.
	ErrClosed = errors.New("audio context closed")
)
