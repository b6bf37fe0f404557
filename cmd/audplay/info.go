// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
)

var (
	fileStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E9C46A"))
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("#8D99AE"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E76F51"))
)

type InfoCmd struct {
	Files []string `arg:"" name:"file" help:"Files to inspect."`
}

var errInfoFailed = errors.New("some files could not be read")

func (c *InfoCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	reg := audplay.DefaultRegistry()

	failed := false
	for _, path := range c.Files {
		fmt.Println(fileStyle.Render(path))
		if err := describe(os.Stdout, reg, path, cfg.DecodeBufferSize); err != nil {
			fmt.Println("  " + errStyle.Render(err.Error()))
			failed = true
		}
	}
	if failed {
		return errInfoFailed
	}
	return nil
}

// describe opens path with the codec for its extension and prints its format.
func describe(w io.Writer, reg *audio.Registry, path string, bufSize int) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := reg.Open(ext, f, bufSize)
	if err != nil {
		return err
	}
	defer dec.Close()

	duration := "unknown"
	if d := dec.Duration(); d > 0 {
		duration = fmt.Sprintf("%.3fs (%s)", d, clock(d))
	}

	rows := [][2]string{
		{"codec", strings.ToLower(ext)},
		{"rate", fmt.Sprintf("%d Hz", dec.SampleRate())},
		{"channels", fmt.Sprintf("%d", dec.Channels())},
		{"depth", fmt.Sprintf("%d bit", dec.BitDepth())},
		{"duration", duration},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "  %s%s\n", labelStyle.Render(r[0]), r[1]); err != nil {
			return err
		}
	}
	return nil
}
