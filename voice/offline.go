// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"fmt"
	"sync"
	"time"

	"github.com/ik5/audplay/audio"
)

// Offline is a software device. Nothing plays until Render is called, which
// pulls the next span from every playing voice and mixes it.
type Offline struct {
	mtx    sync.Mutex
	format audio.Format
	mixer  *audio.Mixer
	voices []*offlineVoice
	closed bool
	err    error
}

// NewOffline returns a device at sampleRate that mixes span at a time.
func NewOffline(sampleRate int, span time.Duration) *Offline {
	return &Offline{
		format: audio.Canonical(sampleRate),
		mixer:  audio.NewMixer(sampleRate, span),
	}
}

func (d *Offline) Format() audio.Format { return d.format }

func (d *Offline) NewVoice() (Voice, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.err != nil {
		return nil, d.err
	}
	v := &offlineVoice{dev: d, volume: 1}
	d.voices = append(d.voices, v)
	return v, nil
}

// Voices is the number of open voices.
func (d *Offline) Voices() int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return len(d.voices)
}

// Render fills dst with the next stretch of mixed output and returns the
// number of bytes written, which is len(dst) rounded down to whole frames.
// Idle devices render silence.
func (d *Offline) Render(dst []byte) int {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	total := len(dst) - len(dst)%d.format.BytesPerFrame()
	span := d.mixer.BufSize()
	for off := 0; off < total; off += span {
		n := min(span, total-off)
		d.mixer.Reset()
		for _, v := range d.voices {
			if err := v.mix(d.mixer, n); err != nil && d.err == nil {
				d.err = fmt.Errorf("offline mix: %w", err)
			}
		}
		copy(dst[off:off+n], d.mixer.OutputBytes())
	}
	return total
}

// Err returns the first error Render hit while mixing. A failed device
// hands out no new voices.
func (d *Offline) Err() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.err
}

// Close closes every voice. Rendering afterwards yields silence.
func (d *Offline) Close() error {
	d.mtx.Lock()
	voices := d.voices
	d.voices = nil
	d.closed = true
	d.mtx.Unlock()

	for _, v := range voices {
		v.markClosed()
	}
	return nil
}

func (d *Offline) remove(v *offlineVoice) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	for i, o := range d.voices {
		if o == v {
			d.voices = append(d.voices[:i], d.voices[i+1:]...)
			return
		}
	}
}

type offlineVoice struct {
	dev *Offline
	q   pcmQueue

	mtx     sync.Mutex
	state   State
	volume  float64
	closed  bool
	scratch []byte
}

func (v *offlineVoice) mix(m *audio.Mixer, n int) error {
	v.mtx.Lock()
	if v.state != Playing {
		v.mtx.Unlock()
		return nil
	}
	if cap(v.scratch) < n {
		v.scratch = make([]byte, n)
	}
	buf := v.scratch[:n]
	volume := v.volume
	v.mtx.Unlock()

	v.q.read(buf)
	return m.Input(buf, v.dev.format.SampleRate, v.dev.format.BitDepth, v.dev.format.Channels, volume)
}

func (v *offlineVoice) Bind(data []byte, format audio.Format, loop bool) error {
	if v.isClosed() {
		return ErrClosed
	}
	pcm, err := convert(data, format, v.dev.format)
	if err != nil {
		return err
	}
	v.q.bind(pcm, loop)
	return nil
}

func (v *offlineVoice) Queue(data []byte, format audio.Format) error {
	if v.isClosed() {
		return ErrClosed
	}
	pcm, err := convert(data, format, v.dev.format)
	if err != nil {
		return err
	}
	v.q.push(pcm)
	return nil
}

func (v *offlineVoice) Processed() int { return v.q.takeProcessed() }

func (v *offlineVoice) Play() { v.setState(Playing) }

func (v *offlineVoice) Pause() {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.state == Playing {
		v.state = Paused
	}
}

func (v *offlineVoice) Stop() {
	v.setState(Stopped)
	v.q.reset()
}

func (v *offlineVoice) State() State {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.state == Playing && v.q.drained() {
		v.state = Stopped
	}
	return v.state
}

func (v *offlineVoice) SampleOffset() int64 {
	return v.q.playedBytes() / int64(v.dev.format.BytesPerFrame())
}

func (v *offlineVoice) SetVolume(vol float64) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	v.volume = vol
}

func (v *offlineVoice) Close() error {
	if v.markClosed() {
		v.dev.remove(v)
	}
	return nil
}

// markClosed stops the voice and reports whether it was open.
func (v *offlineVoice) markClosed() bool {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.closed {
		return false
	}
	v.closed = true
	v.state = Stopped
	v.q.reset()
	return true
}

func (v *offlineVoice) setState(s State) {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if !v.closed {
		v.state = s
	}
}

func (v *offlineVoice) isClosed() bool {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.closed
}
