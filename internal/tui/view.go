package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	reverseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D94"))
	forwardStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56"))
	frameStyle   = lipgloss.NewStyle().Padding(1, 2)
)

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title()))
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(m.fraction()))
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func (m model) status() string {
	p := m.player
	state := "paused"
	if p.IsPlaying() {
		state = "playing"
	}
	dir := forwardStyle.Render("▶ forward")
	if p.Reverse() {
		dir = reverseStyle.Render("◀ reverse")
	}

	var pos, total time.Duration
	if f, ok := p.Format(); ok {
		pos = f.FrameDuration(int64(m.fraction() * float64(f.TotalFrames)))
		total = f.Duration()
	}

	parts := []string{
		dir,
		state,
		fmt.Sprintf("%s / %s", formatDuration(pos), formatDuration(total)),
		faintStyle.Render("at end: " + p.EndPolicy().String()),
		faintStyle.Render(volumeLabel(p.Volume(), m.muted)),
	}
	if m.scrubbing {
		parts = append(parts, reverseStyle.Render("scrubbing"))
	}
	if m.lastCue != "" {
		parts = append(parts, titleStyle.Render("cue: "+string(m.lastCue)))
	}
	if s := p.Stats(); s.Underruns > 0 || s.Faults > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("underruns %d, faults %d", s.Underruns, s.Faults)))
	}
	return strings.Join(parts, faintStyle.Render("  •  "))
}

func volumeLabel(v float32, muted bool) string {
	if muted {
		return "muted"
	}
	return fmt.Sprintf("vol %d%%", int(v*100+0.5))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
