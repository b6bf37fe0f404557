// SPDX-License-Identifier: EPL-2.0

package flac_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/flac"
)

// Example loads a whole file into a Clip.
func Example() {
	f, err := os.Open("track.flac")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	dec, err := flac.NewDecoder(f, audio.DefaultBufferSize)
	if err != nil {
		log.Fatal(err)
	}
	defer dec.Close()

	clip, err := audio.LoadClip(dec)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%.2fs of %d Hz audio\n", clip.Duration(), clip.Format.SampleRate)
}
