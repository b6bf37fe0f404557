// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrNotVorbisFile indicates the stream is not Ogg Vorbis.
	ErrNotVorbisFile = errors.New("not an Ogg Vorbis file")

	// ErrUnsupportedChannels indicates more than two channels.
	ErrUnsupportedChannels = errors.New("only mono and stereo Vorbis are supported")
)
