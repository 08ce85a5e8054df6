package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/plsplit/internal/tasks"
)

// theme lists the hex colors the views are drawn with.
type theme struct {
	accent string
	ok     string
	err    string
	warn   string
	muted  string
}

var styles = newPalette(theme{
	accent: "#7D56F4",
	ok:     "#04B575",
	err:    "#FF0000",
	warn:   "#FFA500",
	muted:  "#626262",
})

// palette holds the [lipgloss.Style] values shared by every view.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	box   lipgloss.Style
	phase map[tasks.Phase]lipgloss.Style
}

func newPalette(t theme) palette {
	return palette{
		title: fg(t.accent).Bold(true).MarginBottom(1),
		ok:    fg(t.ok).Bold(true),
		err:   fg(t.err).Bold(true),
		warn:  fg(t.warn),
		muted: fg(t.muted).Italic(true),
		box:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t.accent)).Padding(0, 1),
		phase: map[tasks.Phase]lipgloss.Style{
			tasks.FetchSource:    fg(t.accent),
			tasks.Classify:       fg(t.accent),
			tasks.CreatePlaylist: fg(t.ok),
			tasks.ResetPlaylist:  fg(t.warn),
			tasks.WritePlaylist:  fg(t.ok),
			tasks.Done:           fg(t.ok).Bold(true),
		},
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var phaseLabels = map[tasks.Phase]string{
	tasks.FetchSource:    "Fetching origin playlist",
	tasks.Classify:       "Sorting tracks into pools",
	tasks.CreatePlaylist: "Creating playlists",
	tasks.ResetPlaylist:  "Clearing playlist",
	tasks.WritePlaylist:  "Writing playlist",
	tasks.Done:           "Finishing",
}

// phaseLabel renders the label of phase in its color.
func (p palette) phaseLabel(phase tasks.Phase) string {
	label, ok := phaseLabels[phase]
	if !ok {
		return ""
	}
	return p.phase[phase].Render(label)
}
