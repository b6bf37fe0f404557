// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
)

// Example_roundTrip writes a short stereo file and decodes it again.
func Example_roundTrip() {
	samples := make([]int16, 2*800) // 100 ms at 8 kHz
	file := new(bytes.Buffer)
	if err := wav.WriteWAV16(file, 8000, 2, samples); err != nil {
		fmt.Println("write:", err)
		return
	}

	dec, err := wav.NewDecoder(bytes.NewReader(file.Bytes()), audio.DefaultBufferSize)
	if err != nil {
		fmt.Println("open:", err)
		return
	}

	total := 0
	for {
		n, err := dec.Decode()
		if err != nil {
			fmt.Println("decode:", err)
			return
		}
		if n == 0 {
			break
		}
		total += n
	}

	fmt.Printf("%d Hz, %d channels, %d bits\n", dec.SampleRate(), dec.Channels(), dec.BitDepth())
	fmt.Printf("duration: %.1fs\n", dec.Duration())
	fmt.Printf("decoded: %d bytes\n", total)
	// Output:
	// 8000 Hz, 2 channels, 16 bits
	// duration: 0.1s
	// decoded: 3200 bytes
}

// Example_notWAV shows the error returned for other containers.
func Example_notWAV() {
	_, err := wav.NewDecoder(bytes.NewReader([]byte("OggS....")), 0)
	fmt.Println(errors.Is(err, wav.ErrNotWavFile))
	// Output:
	// true
}
