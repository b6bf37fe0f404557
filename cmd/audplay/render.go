// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/voice"
)

type RenderCmd struct {
	Input  string `arg:"" name:"input" help:"File to render." type:"existingfile"`
	Output string `arg:"" name:"output" help:"WAV file to write."`

	Stream  bool    `help:"Stream from disk instead of loading the whole clip."`
	Offset  float64 `help:"Start position in seconds."`
	Length  float64 `help:"Window length in seconds. 0 renders to the end."`
	FadeIn  float64 `help:"Fade-in length in seconds."`
	FadeOut float64 `help:"Fade-out length in seconds."`
	Volume  float64 `help:"Source volume." default:"1"`
	Max     float64 `help:"Stop after this many seconds of output." default:"600"`
}

// manualScheduler leaves Update to the render loop.
type manualScheduler struct{}

func (manualScheduler) Register(func()) func() { return func() {} }

func (c *RenderCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	log := g.logger()

	dev := voice.NewOffline(cfg.SampleRate, cfg.Tick)
	defer dev.Close()

	actx, err := audplay.NewContext(dev,
		audplay.WithConfig(cfg),
		audplay.WithLogger(log),
		audplay.WithScheduler(manualScheduler{}))
	if err != nil {
		return err
	}
	defer actx.Close()

	src, err := actx.CreateSource(c.Input, c.Stream)
	if err != nil {
		return err
	}
	defer src.Close()

	src.SetOffset(c.Offset)
	src.SetDuration(c.Length)
	src.SetFadeIn(c.FadeIn)
	src.SetFadeOut(c.FadeOut)
	src.SetOriginalVolume(c.Volume)

	out, err := os.Create(c.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := wav.NewWriter(out, dev.Format())
	if err != nil {
		return err
	}

	if !src.Play() {
		return fmt.Errorf("%s: %w", c.Input, errNoVoice)
	}

	ticks, err := render(actx, dev, w, src, cfg.QueueBuffers, c.Max)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	log.Info("rendered",
		slog.String("input", c.Input),
		slog.String("output", c.Output),
		slog.String("mode", src.Mode().String()),
		slog.Float64("seconds", dev.Format().Seconds(ticks*dev.Format().Bytes(cfg.Tick.Seconds()))))
	return nil
}

// render ticks the context until src stops, then drains the mixed buffers
// still queued on the device. It returns the number of ticks written.
func render(actx *audplay.Context, dev *voice.Offline, w *wav.Writer, src *audplay.Source, queued int, maxSeconds float64) (int, error) {
	f := dev.Format()
	buf := make([]byte, f.Bytes(actx.Config().Tick.Seconds()))
	limit := int(maxSeconds / f.Seconds(len(buf)))

	ticks, tail := 0, queued+1
	for ticks < limit && tail > 0 {
		actx.Update()
		n := dev.Render(buf)
		if err := w.Write(buf[:n]); err != nil {
			return ticks, err
		}
		ticks++

		if src.IsStopped() {
			tail--
		}
	}
	return ticks, nil
}
