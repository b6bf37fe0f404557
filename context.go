// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/config"
	"github.com/ik5/audplay/voice"
)

// Context owns a pool on one device and creates sources for it.
type Context struct {
	cfg   config.Config
	log   *slog.Logger
	dev   voice.Device
	reg   *audio.Registry
	sched Scheduler

	pool       *Pool
	unregister func()
	closeOnce  sync.Once
	closeErr   error
}

// Option configures a Context.
type Option func(*Context)

func WithConfig(cfg config.Config) Option {
	return func(c *Context) { c.cfg = cfg }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithScheduler replaces the default TickScheduler that drives Update.
func WithScheduler(s Scheduler) Option {
	return func(c *Context) { c.sched = s }
}

// WithRegistry replaces DefaultRegistry for CreateSource.
func WithRegistry(r *audio.Registry) Option {
	return func(c *Context) { c.reg = r }
}

// NewContext builds a pool on dev and registers its Update with the
// scheduler. The mix rate is the device rate.
func NewContext(dev voice.Device, opts ...Option) (*Context, error) {
	c := &Context{
		cfg: config.Default(),
		log: slog.Default(),
		dev: dev,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if c.reg == nil {
		c.reg = DefaultRegistry()
	}
	if c.sched == nil {
		c.sched = NewTickScheduler(context.Background(), c.cfg.UpdateInterval)
	}

	pool, err := newPool(dev, c.cfg.Voices, c.cfg.QueueBuffers, c.cfg.Tick, c.log)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	c.pool = pool
	c.unregister = c.sched.Register(pool.Update)

	c.log.Debug("audio context ready",
		slog.Int("rate", dev.Format().SampleRate),
		slog.Int("voices", c.cfg.Voices),
		slog.String("stream_mode", string(c.cfg.StreamMode)))

	return c, nil
}

func (c *Context) Config() config.Config { return c.cfg }
func (c *Context) Pool() *Pool           { return c.pool }
func (c *Context) Device() voice.Device  { return c.dev }

// CreateSourceFromClip returns a source that plays clip on a voice of its own.
func (c *Context) CreateSourceFromClip(clip *audio.Clip) (*Source, error) {
	if c.pool.isClosed() {
		return nil, ErrClosed
	}
	if !clip.Format.Valid() {
		return nil, fmt.Errorf("clip %+v: %w", clip.Format, audio.ErrUnsupportedFormat)
	}
	return newClipSource(c.pool, clip), nil
}

// CreateSourceFromDecoder returns a streaming source. The source owns dec and
// closes it on Close. Mixed sources need a rate that divides the mix rate.
func (c *Context) CreateSourceFromDecoder(dec audio.Decoder, mode Mode) (*Source, error) {
	if c.pool.isClosed() {
		return nil, ErrClosed
	}
	if mode != ModeExclusive && mode != ModeMixed {
		return nil, fmt.Errorf("%s: %w", mode, ErrInvalidMode)
	}
	f := audio.FormatOf(dec)
	if !f.Valid() {
		return nil, fmt.Errorf("decoder %+v: %w", f, audio.ErrUnsupportedFormat)
	}
	if mode == ModeMixed && !c.mixable(f) {
		return nil, fmt.Errorf("%d Hz into %d Hz: %w", f.SampleRate, c.pool.rate, audio.ErrUnsupportedSampleRate)
	}
	return newStreamSource(c.pool, dec, mode, c.cfg.StreamBuffers), nil
}

func (c *Context) mixable(f audio.Format) bool {
	return f.SampleRate > 0 && c.pool.rate%f.SampleRate == 0
}

// CreateSource opens path with the codec registered for its extension. A
// non-stream source is decoded into memory and the file closed; a stream
// keeps the file open until the source is closed. Streams use the configured
// StreamMode, falling back to exclusive for rates the mixer cannot take.
func (c *Context) CreateSource(path string, stream bool) (*Source, error) {
	ext := filepath.Ext(path)
	opener, ok := c.reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDecoder)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := opener.Open(f, c.cfg.DecodeBufferSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !stream {
		defer f.Close()
		defer dec.Close()

		clip, err := audio.LoadClip(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return c.CreateSourceFromClip(clip)
	}

	mode := ModeMixed
	if c.cfg.StreamMode == config.StreamExclusive {
		mode = ModeExclusive
	}
	if mode == ModeMixed && !c.mixable(audio.FormatOf(dec)) {
		c.log.Debug("streaming exclusive, rate does not divide the mix rate",
			slog.String("path", path), slog.Int("rate", dec.SampleRate()))
		mode = ModeExclusive
	}

	s, err := c.CreateSourceFromDecoder(&fileDecoder{Decoder: dec, file: f}, mode)
	if err != nil {
		dec.Close()
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (c *Context) Stop()               { c.pool.StopAll() }
func (c *Context) Pause()              { c.pool.PauseAll() }
func (c *Context) Resume()             { c.pool.ResumeAll() }
func (c *Context) Rewind()             { c.pool.RewindAll() }
func (c *Context) SetVolume(v float64) { c.pool.SetVolume(v) }

// Update runs one pool tick by hand.
func (c *Context) Update() { c.pool.Update() }

// Close stops the scheduler and the pool. It does not close the device.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.unregister()
		c.closeErr = c.pool.Close()
	})
	return c.closeErr
}
