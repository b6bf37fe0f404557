// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audplay/formats/aiff"
)

// Example_notAiff shows the error returned for other containers.
func Example_notAiff() {
	_, err := aiff.NewDecoder(bytes.NewReader([]byte("RIFF....WAVE")), 0)
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))
	// Output:
	// true
}
