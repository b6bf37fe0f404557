// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audplay/audio"
)

// Oto plays voices on the system output. oto allows a single context per
// process, so only one Oto device can exist at a time.
type Oto struct {
	ctx    *oto.Context
	format audio.Format

	mtx    sync.Mutex
	voices map[*otoVoice]struct{}
	closed bool
}

// NewOto opens the system output at sampleRate in canonical 16-bit stereo.
// buffer is the latency oto keeps queued; 0 picks oto's default.
func NewOto(sampleRate int, buffer time.Duration) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: audio.DefaultChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	<-ready

	return &Oto{
		ctx:    ctx,
		format: audio.Canonical(sampleRate),
		voices: make(map[*otoVoice]struct{}),
	}, nil
}

func (d *Oto) Format() audio.Format { return d.format }

func (d *Oto) NewVoice() (Voice, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if err := d.ctx.Err(); err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}

	v := &otoVoice{dev: d}
	v.player = d.ctx.NewPlayer(&queueReader{q: &v.q})
	d.voices[v] = struct{}{}
	return v, nil
}

// Close stops every voice and suspends the output.
func (d *Oto) Close() error {
	d.mtx.Lock()
	voices := d.voices
	d.voices = nil
	d.closed = true
	d.mtx.Unlock()

	for v := range voices {
		v.markClosed()
	}
	return d.ctx.Suspend()
}

func (d *Oto) remove(v *otoVoice) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	delete(d.voices, v)
}

// queueReader feeds a pcmQueue to an oto player. It never ends: a starved
// queue reads as silence.
type queueReader struct {
	q *pcmQueue
}

func (r *queueReader) Read(p []byte) (int, error) {
	r.q.read(p)
	return len(p), nil
}

// Seek lets Player.Seek flush what oto has already pulled.
func (r *queueReader) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

type otoVoice struct {
	dev    *Oto
	q      pcmQueue
	player *oto.Player

	mtx    sync.Mutex
	state  State
	closed bool
}

func (v *otoVoice) Bind(data []byte, format audio.Format, loop bool) error {
	if v.isClosed() {
		return ErrClosed
	}
	pcm, err := convert(data, format, v.dev.format)
	if err != nil {
		return err
	}
	v.flush()
	v.q.bind(pcm, loop)
	return nil
}

func (v *otoVoice) Queue(data []byte, format audio.Format) error {
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

func (v *otoVoice) Processed() int { return v.q.takeProcessed() }

func (v *otoVoice) Play() {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.closed {
		return
	}
	v.state = Playing
	v.player.Play()
}

func (v *otoVoice) Pause() {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.state == Playing {
		v.state = Paused
		v.player.Pause()
	}
}

func (v *otoVoice) Stop() {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	v.state = Stopped
	v.player.Pause()
	v.q.reset()
	v.flush()
}

func (v *otoVoice) flush() {
	_, _ = v.player.Seek(0, io.SeekStart)
}

func (v *otoVoice) State() State {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.state == Playing && v.q.drained() && v.player.BufferedSize() == 0 {
		v.state = Stopped
		v.player.Pause()
	}
	return v.state
}

// SampleOffset counts what oto has handed to the hardware, not what it has
// buffered.
func (v *otoVoice) SampleOffset() int64 {
	played := v.q.playedBytes() - int64(v.player.BufferedSize())
	if played < 0 {
		return 0
	}
	return played / int64(v.dev.format.BytesPerFrame())
}

func (v *otoVoice) SetVolume(vol float64) {
	v.player.SetVolume(min(max(vol, 0), 1))
}

func (v *otoVoice) Close() error {
	if v.markClosed() {
		v.dev.remove(v)
	}
	return nil
}

func (v *otoVoice) markClosed() bool {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	if v.closed {
		return false
	}
	v.closed = true
	v.state = Stopped
	v.player.Pause()
	v.q.reset()
	return true
}

func (v *otoVoice) isClosed() bool {
	v.mtx.Lock()
	defer v.mtx.Unlock()

	return v.closed
}
