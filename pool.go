// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/voice"
)

// Pool shares a fixed set of device voices between any number of sources.
//
// Clip and exclusive sources take a voice of their own while playing; a
// Play with no voice free fails instead of waiting. Mixed sources are summed
// by a Mixer onto one extra queue voice that never leaves the pool.
//
// One mutex serializes every transport call against Update, so Update may
// run from any goroutine.
type Pool struct {
	mtx sync.Mutex
	log *slog.Logger

	free     []voice.Voice
	capacity int
	playing  map[*Source]struct{}

	queue  voice.Voice
	mixer  *audio.Mixer
	rate   int
	tick   time.Duration
	volume float64

	inactive bool
	closed   bool
}

// newPool acquires capacity voices plus the queue voice from dev. On error
// every voice already acquired is closed.
func newPool(dev voice.Device, capacity, queued int, tick time.Duration, log *slog.Logger) (*Pool, error) {
	format := dev.Format()
	p := &Pool{
		log:      log,
		capacity: capacity,
		playing:  make(map[*Source]struct{}),
		mixer:    audio.NewMixer(format.SampleRate, tick),
		rate:     format.SampleRate,
		tick:     tick,
		volume:   1,
	}

	for range capacity {
		v, err := dev.NewVoice()
		if err != nil {
			p.closeVoices()
			return nil, fmt.Errorf("acquire voice %d of %d: %w", len(p.free)+1, capacity, err)
		}
		p.free = append(p.free, v)
	}

	q, err := dev.NewVoice()
	if err != nil {
		p.closeVoices()
		return nil, fmt.Errorf("acquire queue voice: %w", err)
	}
	p.queue = q

	silence := make([]byte, p.mixer.BufSize())
	for range queued {
		if err := q.Queue(silence, p.mixer.Format()); err != nil {
			p.closeVoices()
			return nil, fmt.Errorf("prime queue voice: %w", err)
		}
	}
	q.Play()

	return p, nil
}

func (p *Pool) closeVoices() {
	for _, v := range p.free {
		v.Close()
	}
	p.free = nil
	if p.queue != nil {
		p.queue.Close()
		p.queue = nil
	}
}

// Play admits s. It is a no-op returning true if s is already playing, and
// returns false if s needs a voice and none is free.
func (p *Pool) Play(s *Source) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.admit(s)
}

// replay is Source.Play: resume when paused, restart when playing, admit
// otherwise.
func (p *Pool) replay(s *Source) bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.playing[s]; ok {
		if s.paused {
			s.resumeImpl()
			return true
		}
		if err := s.restart(s.offset); err != nil {
			p.log.Warn("restart failed", append(s.logAttrs(), slog.Any("err", err))...)
			s.stopImpl()
			p.release(s)
			return false
		}
		return true
	}
	return p.admit(s)
}

func (p *Pool) admit(s *Source) bool {
	if p.closed || s.closed {
		return false
	}
	if _, ok := p.playing[s]; ok {
		return true
	}

	if s.mode != ModeMixed {
		if len(p.free) == 0 {
			p.log.Debug("no free voice", s.logAttrs()...)
			return false
		}
		last := len(p.free) - 1
		s.voice = p.free[last]
		p.free = p.free[:last]
	}

	p.playing[s] = struct{}{}
	if err := s.playImpl(s.pos); err != nil {
		p.log.Warn("play failed", append(s.logAttrs(), slog.Any("err", err))...)
		s.stopImpl()
		p.release(s)
		return false
	}
	return true
}

// release takes s out of the playing set and returns its voice.
func (p *Pool) release(s *Source) {
	if s.voice != nil {
		s.voice.Stop()
		p.free = append(p.free, s.voice)
		s.voice = nil
	}
	delete(p.playing, s)
}

// Update is the pool tick. It retires sources that have finished and feeds
// the queue voice one mixed buffer for every buffer it has consumed.
func (p *Pool) Update() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.inactive || p.closed {
		return
	}

	for s := range p.playing {
		if s.paused || s.update() {
			continue
		}
		s.stopImpl()
		s.rewindImpl()
		p.release(s)
	}

	for range p.queue.Processed() {
		p.mix()
	}
}

func (p *Pool) mix() {
	p.mixer.Reset()

	for s := range p.playing {
		if s.mode != ModeMixed || !s.active || s.paused {
			continue
		}
		buf := s.take(p.mixer.Samples())
		if len(buf) == 0 {
			continue
		}
		f := s.input.Format()
		if err := p.mixer.Input(buf, p.rate, f.BitDepth, f.Channels, s.curVolume*p.volume); err != nil {
			p.log.Debug("skipped mixer input", append(s.logAttrs(), slog.Any("err", err))...)
		}
	}

	if err := p.queue.Queue(p.mixer.OutputBytes(), p.mixer.Format()); err != nil {
		p.log.Warn("dropped mixed buffer", slog.Any("err", err))
	}
}

// StopAll stops every source and returns all voices.
func (p *Pool) StopAll() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.stopAll()
}

func (p *Pool) stopAll() {
	for s := range p.playing {
		s.stopImpl()
		p.release(s)
	}
}

// PauseAll pauses every source and the queue voice. Update does nothing
// until ResumeAll.
func (p *Pool) PauseAll() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.inactive = true
	for s := range p.playing {
		s.pauseImpl()
	}
	if p.queue != nil {
		p.queue.Pause()
	}
}

func (p *Pool) ResumeAll() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.inactive = false
	for s := range p.playing {
		s.resumeImpl()
	}
	if p.queue != nil {
		p.queue.Play()
	}
}

func (p *Pool) RewindAll() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for s := range p.playing {
		if err := s.rewindImpl(); err != nil {
			p.log.Warn("rewind failed", append(s.logAttrs(), slog.Any("err", err))...)
		}
	}
}

// SetVolume sets the master volume applied on top of every source.
func (p *Pool) SetVolume(v float64) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.volume = max(v, 0)
	for s := range p.playing {
		if s.voice != nil {
			s.voice.SetVolume(s.curVolume * p.volume)
		}
	}
}

func (p *Pool) Volume() float64 {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.volume
}

// Stop stops s and returns its voice. Stopping a stopped source does nothing.
func (p *Pool) Stop(s *Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.playing[s]; !ok {
		return
	}
	s.stopImpl()
	p.release(s)
}

func (p *Pool) Pause(s *Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.playing[s]; ok {
		s.pauseImpl()
	}
}

func (p *Pool) Resume(s *Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if _, ok := p.playing[s]; ok {
		s.resumeImpl()
	}
}

func (p *Pool) Rewind(s *Source) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if err := s.rewindImpl(); err != nil {
		p.log.Warn("rewind failed", append(s.logAttrs(), slog.Any("err", err))...)
		p.stopFailed(s)
	}
}

func (p *Pool) Seek(s *Source, seconds float64) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if err := s.seekImpl(seconds); err != nil {
		p.stopFailed(s)
		return err
	}
	return nil
}

// stopFailed stops an active source whose restart failed halfway.
func (p *Pool) stopFailed(s *Source) {
	if _, ok := p.playing[s]; ok {
		s.stopImpl()
		p.release(s)
	}
}

func (p *Pool) Tell(s *Source) float64 {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return s.tellImpl()
}

// Close stops everything and closes every voice. It returns ErrVoiceLeak if
// a voice went missing.
func (p *Pool) Close() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil
	}
	p.stopAll()
	p.closed = true

	var err error
	if len(p.free) != p.capacity {
		err = fmt.Errorf("%w: %d of %d voices free", ErrVoiceLeak, len(p.free), p.capacity)
	}
	p.closeVoices()
	return err
}

func (p *Pool) isClosed() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.closed
}

// Available is the number of free voices.
func (p *Pool) Available() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.free)
}

// Capacity is the number of voices shared by clip and exclusive sources.
func (p *Pool) Capacity() int { return p.capacity }

// Playing is the number of active sources.
func (p *Pool) Playing() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.playing)
}
