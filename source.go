// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/voice"
)

// Mode is how a source reaches the hardware. It is fixed at creation.
type Mode int

const (
	// ModeClip plays a whole in-memory clip on a voice of its own.
	ModeClip Mode = iota
	// ModeExclusive streams a decoder on a voice of its own.
	ModeExclusive
	// ModeMixed streams a decoder through the pool's shared mixer voice.
	ModeMixed
)

func (m Mode) String() string {
	switch m {
	case ModeClip:
		return "clip"
	case ModeExclusive:
		return "exclusive"
	case ModeMixed:
		return "mixed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Source is one playable sound. All methods are safe for concurrent use;
// transport calls are serialized by the owning pool.
type Source struct {
	id   uuid.UUID
	pool *Pool
	mode Mode

	clip   *audio.Clip
	input  *audio.InputBuffer
	output *audio.OutputBuffer
	slot   []byte

	// Mixed streams only: slots repeated up times to the mix rate, of which
	// the first taken bytes went into the last mix.
	up      int
	pending []byte
	taken   int

	// Guarded by pool.mtx.
	voice  voice.Voice
	queued int     // buffers on voice not yet reported processed
	start  float64 // stream position where voice playback began

	active  bool
	paused  bool
	ended   bool // the stream ran out by itself
	closed  bool
	looping bool
	pos     float64 // where the next Play starts

	offset, duration float64
	fadeIn, fadeOut  float64
	origVolume       float64
	curVolume        float64
}

func newSource(p *Pool, mode Mode) *Source {
	return &Source{
		id:         uuid.New(),
		pool:       p,
		mode:       mode,
		origVolume: 1,
		curVolume:  1,
	}
}

func newClipSource(p *Pool, clip *audio.Clip) *Source {
	s := newSource(p, ModeClip)
	s.clip = clip
	return s
}

func newStreamSource(p *Pool, dec audio.Decoder, mode Mode, slots int) *Source {
	s := newSource(p, mode)
	s.input = audio.NewInputBuffer(dec)

	f := s.input.Format()
	size := max(f.Bytes(p.tick.Seconds()), f.BytesPerFrame())
	if mode == ModeMixed && f.SampleRate > 0 {
		// one slot covers a whole mixer tick once upsampled
		s.up = max(p.rate/f.SampleRate, 1)
		frames := (p.mixer.Samples() + s.up - 1) / s.up
		size = frames * f.BytesPerFrame()
		s.pending = make([]byte, 0, 2*frames*s.up*f.BytesPerFrame())
	}
	s.output = audio.NewOutputBuffer(slots, size)
	s.slot = make([]byte, size)
	return s
}

func (s *Source) ID() uuid.UUID { return s.id }
func (s *Source) Mode() Mode    { return s.mode }

func (s *Source) logAttrs() []any {
	return []any{slog.String("source", s.id.String()), slog.String("mode", s.mode.String())}
}

// Play starts the source. A paused source resumes and a playing one restarts
// from the start of its window. It returns false when no voice is free.
func (s *Source) Play() bool { return s.pool.replay(s) }

func (s *Source) Stop()   { s.pool.Stop(s) }
func (s *Source) Pause()  { s.pool.Pause(s) }
func (s *Source) Resume() { s.pool.Resume(s) }
func (s *Source) Rewind() { s.pool.Rewind(s) }

// Seek moves playback to seconds. A stopped source starts there on its next
// Play.
func (s *Source) Seek(seconds float64) error { return s.pool.Seek(s, seconds) }

// Tell returns the playback position in seconds.
func (s *Source) Tell() float64 { return s.pool.Tell(s) }

func (s *Source) IsStopped() bool {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return !s.active
}

func (s *Source) IsPaused() bool {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.active && s.paused
}

// IsFinished reports a stopped, non-looping source with nothing left to
// play. A clip counts as finished whenever it is stopped.
func (s *Source) IsFinished() bool {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()

	if s.active || s.looping {
		return false
	}
	if s.mode == ModeClip {
		return true
	}
	return s.ended || s.input.Exhausted()
}

func (s *Source) SetLooping(loop bool) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.looping = loop
}

func (s *Source) IsLooping() bool {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.looping
}

// SetFadeIn ramps the volume up from 0 over the first seconds of the window.
func (s *Source) SetFadeIn(seconds float64) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.fadeIn = max(seconds, 0)
}

// SetFadeOut ramps the volume down to 0 over the last seconds of the window.
func (s *Source) SetFadeOut(seconds float64) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.fadeOut = max(seconds, 0)
}

func (s *Source) SetOriginalVolume(v float64) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.origVolume = max(v, 0)
	if !s.active {
		s.curVolume = s.origVolume
	}
}

func (s *Source) OriginalVolume() float64 {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.origVolume
}

// CurrentVolume is the volume after the fade envelope, updated every tick.
func (s *Source) CurrentVolume() float64 {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.curVolume
}

// SetOffset sets where the play window starts. A stopped source starts there.
func (s *Source) SetOffset(seconds float64) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.offset = max(seconds, 0)
	if !s.active {
		s.pos = s.offset
	}
}

func (s *Source) Offset() float64 {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.offset
}

// SetDuration limits the play window. 0 plays to the end of the asset.
func (s *Source) SetDuration(seconds float64) {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	s.duration = max(seconds, 0)
}

func (s *Source) Duration() float64 {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.duration
}

// Length is the duration of the whole asset in seconds, 0 when unknown.
func (s *Source) Length() float64 {
	s.pool.mtx.Lock()
	defer s.pool.mtx.Unlock()
	return s.assetDuration()
}

// Close stops the source and releases its decoder. A closed source no
// longer plays; closing it again does nothing.
func (s *Source) Close() error {
	p := s.pool
	p.mtx.Lock()
	if s.closed {
		p.mtx.Unlock()
		return nil
	}
	s.closed = true
	if _, ok := p.playing[s]; ok {
		s.stopImpl()
		p.release(s)
	}
	p.mtx.Unlock()

	if s.input != nil {
		return s.input.Decoder().Close()
	}
	return nil
}

// The methods below run with pool.mtx held.

func (s *Source) assetDuration() float64 {
	if s.mode == ModeClip {
		return s.clip.Duration()
	}
	return s.input.Decoder().Duration()
}

// window is the length of the play window, 0 when unknown.
func (s *Source) window() float64 {
	if s.duration > 0 {
		return s.duration
	}
	if d := s.assetDuration(); d > s.offset {
		return d - s.offset
	}
	return 0
}

// envelope is the linear fade volume at stream position pos.
func (s *Source) envelope(pos float64) float64 {
	v := s.origVolume
	elapsed := pos - s.offset

	if s.fadeIn > 0 && elapsed < s.fadeIn {
		v = s.origVolume * max(elapsed, 0) / s.fadeIn
	}
	if win := s.window(); s.fadeOut > 0 && win > 0 {
		if left := win - elapsed; left < s.fadeOut {
			v = min(v, s.origVolume*max(left, 0)/s.fadeOut)
		}
	}
	return v
}

func (s *Source) playImpl(at float64) error {
	s.ended = false
	s.start = at

	switch s.mode {
	case ModeClip:
		if err := s.voice.Bind(s.clip.Slice(at), s.clip.Format, s.looping); err != nil {
			return fmt.Errorf("bind clip: %w", err)
		}
		s.applyVolume(s.envelope(at))
		s.voice.Play()

	case ModeExclusive:
		if err := s.seekInput(at); err != nil {
			return err
		}
		s.resetOutput()
		s.queued = 0
		for s.queued < s.output.Slots() {
			ok, err := s.refill()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
		s.applyVolume(s.envelope(at))
		s.voice.Play()

	case ModeMixed:
		if err := s.seekInput(at); err != nil {
			return err
		}
		s.resetOutput()
		if err := s.input.Output(s.output, s.looping); err != nil {
			return err
		}
		s.curVolume = s.envelope(at)
	}

	s.active = true
	s.paused = false
	return nil
}

func (s *Source) resetOutput() {
	s.output.Reset()
	s.pending, s.taken = s.pending[:0], 0
}

// take returns up to frames frames of mixed-stream PCM at the mix rate,
// pulling slots from the output buffer as needed. Frames left over from a
// slot carry into the next call. The result is valid until the next take.
func (s *Source) take(frames int) []byte {
	fs := s.input.Format().BytesPerFrame()
	want := frames * fs

	s.pending = s.pending[:copy(s.pending, s.pending[s.taken:])]
	for len(s.pending) < want {
		n := s.output.Output(s.slot)
		if n == 0 {
			break
		}
		s.pending = audio.Upsample(s.pending, s.slot[:n], fs, max(s.up, 1))
	}

	s.taken = min(want, len(s.pending))
	return s.pending[:s.taken]
}

func (s *Source) seekInput(at float64) error {
	if at > 0 {
		return s.input.Seek(at, s.looping)
	}
	s.input.Rewind()
	return nil
}

// refill moves one slot of decoded PCM onto the voice. It reports whether a
// buffer was queued.
func (s *Source) refill() (bool, error) {
	if err := s.input.Output(s.output, s.looping); err != nil {
		return false, err
	}
	n := s.output.Output(s.slot)
	if n == 0 {
		return false, nil
	}
	if err := s.voice.Queue(s.slot[:n], s.input.Format()); err != nil {
		s.pool.log.Warn("dropped stream buffer", append(s.logAttrs(), slog.Any("err", err))...)
		return false, nil
	}
	s.queued++
	return true, nil
}

func (s *Source) applyVolume(v float64) {
	s.curVolume = v
	if s.voice != nil {
		s.voice.SetVolume(v * s.pool.volume)
	}
}

// update advances a playing source by one tick and reports whether it is
// still playing.
func (s *Source) update() bool {
	switch s.mode {
	case ModeClip:
		if s.voice.State() != voice.Playing {
			return false
		}

	case ModeExclusive:
		s.queued = max(s.queued-s.voice.Processed(), 0)
		for s.queued < s.output.Slots() {
			ok, err := s.refill()
			if err != nil {
				s.pool.log.Warn("stream stopped", append(s.logAttrs(), slog.Any("err", err))...)
				return false
			}
			if !ok {
				break
			}
		}
		if s.drained() && s.queued == 0 {
			s.ended = true
			return false
		}

	case ModeMixed:
		if err := s.input.Output(s.output, s.looping); err != nil {
			s.pool.log.Warn("stream stopped", append(s.logAttrs(), slog.Any("err", err))...)
			return false
		}
		if s.drained() {
			s.ended = true
			return false
		}
	}

	pos := s.tellImpl()
	if s.duration > 0 && pos > s.offset+s.duration {
		if !s.looping {
			s.ended = true
			return false
		}
		if err := s.restart(s.offset); err != nil {
			s.pool.log.Warn("loop restart failed", append(s.logAttrs(), slog.Any("err", err))...)
			return false
		}
		pos = s.offset
	}

	if s.mode == ModeMixed {
		s.curVolume = s.envelope(pos)
	} else {
		s.applyVolume(s.envelope(pos))
	}
	return true
}

func (s *Source) drained() bool {
	return !s.looping && s.input.Exhausted() && s.output.Len() == 0 && len(s.pending) == s.taken
}

func (s *Source) stopImpl() {
	if !s.active {
		return
	}
	switch s.mode {
	case ModeMixed:
		s.resetOutput()
	default:
		s.voice.Stop()
		s.queued = 0
	}
	s.active = false
	s.paused = false
	s.pos = s.offset
}

func (s *Source) pauseImpl() {
	if s.active && !s.paused {
		s.paused = true
		if s.voice != nil {
			s.voice.Pause()
		}
	}
}

func (s *Source) resumeImpl() {
	if s.active && s.paused {
		s.paused = false
		if s.voice != nil {
			s.voice.Play()
		}
	}
}

// restart cycles an active source to at, keeping it paused if it was.
func (s *Source) restart(at float64) error {
	paused := s.paused
	if s.voice != nil {
		s.voice.Stop()
	}
	if err := s.playImpl(at); err != nil {
		return err
	}
	if paused {
		s.pauseImpl()
	}
	return nil
}

func (s *Source) rewindImpl() error {
	if s.active {
		return s.restart(s.offset)
	}
	s.pos = s.offset
	if s.input != nil && !s.closed {
		s.input.Rewind()
	}
	return nil
}

func (s *Source) seekImpl(seconds float64) error {
	seconds = max(seconds, 0)
	if s.active {
		return s.restart(seconds)
	}
	s.pos = seconds
	s.ended = false
	return nil
}

func (s *Source) tellImpl() float64 {
	if !s.active {
		return s.pos
	}
	if s.mode == ModeMixed {
		return s.input.Offset()
	}

	elapsed := float64(s.voice.SampleOffset()) / float64(s.pool.rate)
	if !s.looping {
		return s.start + elapsed
	}

	if s.mode == ModeClip {
		// the bound slice loops, so position wraps within it
		if lap := s.clip.Duration() - s.start; lap > 0 {
			elapsed = math.Mod(elapsed, lap)
		}
		return s.start + elapsed
	}
	pos := s.start + elapsed
	if d := s.assetDuration(); d > 0 {
		pos = math.Mod(pos, d)
	}
	return pos
}
