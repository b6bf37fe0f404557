// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedSampleRate is returned by the mixer for rates that do not
	// divide the canonical rate.
	ErrUnsupportedSampleRate = errors.New("sample rate must divide the canonical rate")
	// ErrUnsupportedFormat is returned for bit depths other than 8/16 or more than 2 channels.
	ErrUnsupportedFormat = errors.New("unsupported PCM format")
	// ErrUnknownFormat is returned when no opener is registered for a format key.
	ErrUnknownFormat = errors.New("unknown audio format")
	// ErrSeekFailed is returned when the decoder refuses a seek.
	ErrSeekFailed = errors.New("decoder seek failed")
)
