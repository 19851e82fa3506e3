package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorPass    = lipgloss.Color("#04B575")
	colorFail    = lipgloss.Color("#FF5F87")
	colorWarn    = lipgloss.Color("#FFAF00")
	colorSubtle  = lipgloss.Color("#767676")
)

// styles are bound to one writer's renderer, so output to a file or a
// buffer is left unstyled.
type styles struct {
	title  lipgloss.Style
	subtle lipgloss.Style
	value  lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	return styles{
		title:  re.NewStyle().Foreground(colorPrimary).Bold(true),
		subtle: re.NewStyle().Foreground(colorSubtle),
		value:  re.NewStyle().Bold(true),
		pass:   re.NewStyle().Foreground(colorPass).Bold(true),
		fail:   re.NewStyle().Foreground(colorFail).Bold(true),
		warn:   re.NewStyle().Foreground(colorWarn),
	}
}
