// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files into audio.Decoder chunks.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which always produces
// signed 16-bit little-endian stereo at the file's sample rate. Mono files
// are delivered with both channels equal.
//
//	f, _ := os.Open("music.mp3")
//	dec, err := mp3.NewDecoder(f, audio.DefaultBufferSize)
//	if err != nil {
//	    // errors.Is(err, mp3.ErrNotMP3File)
//	}
//
// Seeking is exact to the frame. Duration is 0 when the underlying reader
// cannot report its length.
package mp3
