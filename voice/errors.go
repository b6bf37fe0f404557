// SPDX-License-Identifier: EPL-2.0

package voice

import "errors"

var (
	// ErrClosed is returned by voices and devices used after Close.
	ErrClosed = errors.New("voice closed")
	// ErrUnsupportedFormat is returned for PCM the device cannot convert.
	ErrUnsupportedFormat = errors.New("unsupported voice format")
)
