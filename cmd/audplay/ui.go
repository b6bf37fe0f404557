// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ik5/audplay"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F4A261")).
			MarginBottom(1)

	nameStyle = lipgloss.NewStyle().
			Width(28).
			Foreground(lipgloss.Color("#E9C46A"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2A9D8F"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8D99AE"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8D99AE")).
			Italic(true).
			MarginTop(1)
)

const barWidth = 30

type track struct {
	name string
	src  *audplay.Source
}

type tickMsg time.Time

// doneMsg is sent once every source has stopped.
type doneMsg struct{}

// model is the transport UI. It drives the context's global controls and
// redraws source positions on every tick.
type model struct {
	ctx    *audplay.Context
	tracks []track
	volume float64
	paused bool
}

func newModel(ctx *audplay.Context, tracks []track) model {
	return model{ctx: ctx, tracks: tracks, volume: ctx.Pool().Volume()}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		return m, tick()
	case doneMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ":
		if m.paused {
			m.ctx.Resume()
		} else {
			m.ctx.Pause()
		}
		m.paused = !m.paused
	case "r":
		m.ctx.Rewind()
	case "s":
		m.ctx.Stop()
	case "+", "=":
		m.volume = min(m.volume+0.1, 2)
		m.ctx.SetVolume(m.volume)
	case "-":
		m.volume = max(m.volume-0.1, 0)
		m.ctx.SetVolume(m.volume)
	}
	return m, nil
}

func (m model) View() string {
	var sb strings.Builder

	state := "playing"
	if m.paused {
		state = "paused"
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("audplay  %s  volume %3.0f%%", state, m.volume*100)))
	sb.WriteString("\n")

	for _, t := range m.tracks {
		sb.WriteString(nameStyle.Render(truncate(t.name, 26)))
		sb.WriteString(renderProgress(t.src.Tell(), t.src.Length()))
		sb.WriteString(" ")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%-9s %s", t.src.Mode(), trackState(t.src))))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("space pause/resume  r rewind  s stop  +/- volume  q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func trackState(s *audplay.Source) string {
	switch {
	case s.IsPaused():
		return "paused"
	case !s.IsStopped():
		return "playing"
	case s.IsFinished():
		return "finished"
	default:
		return "stopped"
	}
}

// renderProgress draws a position bar followed by mm:ss / mm:ss. Streams of
// unknown length show the position only.
func renderProgress(pos, length float64) string {
	filled := 0
	if length > 0 {
		filled = min(int(pos/length*barWidth), barWidth)
	}
	bar := barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", barWidth-filled))

	if length <= 0 {
		return fmt.Sprintf("%s %s", bar, clock(pos))
	}
	return fmt.Sprintf("%s %s / %s", bar, clock(pos), clock(length))
}

func clock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
