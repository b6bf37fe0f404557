// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV decoding and encoding.
//
// Decoding is built on github.com/go-audio/wav and yields audio.Decoder
// chunks. Linear PCM at 8, 16, 24 and 32 bits, mono or stereo, is
// supported. 8-bit data is delivered unsigned as stored; wider samples are
// reduced to signed 16-bit.
//
// # Decoding
//
//	f, _ := os.Open("clip.wav")
//	dec, err := wav.NewDecoder(f, audio.DefaultBufferSize)
//	if err != nil {
//	    // ErrNotWavFile, ErrUnsupportedEncoding, ...
//	}
//	for {
//	    n, err := dec.Decode()
//	    if err != nil || n == 0 {
//	        break
//	    }
//	    play(dec.Buffer()[:n])
//	}
//
// Seek rewinds to the start of the PCM chunk and skips forward, so it costs
// a read of everything before the target.
//
// # Encoding
//
// WriteWAV and WriteWAV16 write a complete file in one call to any
// io.Writer. Writer streams into an io.WriteSeeker and patches the header
// sizes on Close:
//
//	w, _ := wav.NewWriter(f, audio.Canonical(44100))
//	w.Write(pcm)
//	w.Close()
package wav
