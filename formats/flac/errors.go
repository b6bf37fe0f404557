// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	// ErrNotFLACFile indicates the stream does not start with a FLAC signature.
	ErrNotFLACFile = errors.New("not a FLAC file")

	// ErrUnsupportedChannels indicates more than two channels.
	ErrUnsupportedChannels = errors.New("only mono and stereo FLAC are supported")
)
