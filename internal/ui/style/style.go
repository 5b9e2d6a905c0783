// Package style provides shared colors, icons and text styles for the CLI.
package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Star    = "☆"
	Dot     = "●"
	Circle  = "○"
)

// Styles renders text for one writer. Output piped to a file or run with NO_COLOR
// stays plain.
type Styles struct {
	Header lipgloss.Style
	Name   lipgloss.Style
	Muted  lipgloss.Style
	Good   lipgloss.Style
	Bad    lipgloss.Style
}

// For returns the styles for w.
func For(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Header: r.NewStyle().Bold(true).Foreground(Iris),
		Name:   r.NewStyle().Bold(true),
		Muted:  r.NewStyle().Foreground(Slate),
		Good:   r.NewStyle().Foreground(Green),
		Bad:    r.NewStyle().Foreground(Red),
	}
}

// Built returns the icon shown for an environment's build state.
func (s Styles) Built(built bool) string {
	if built {
		return s.Good.Render(Dot)
	}
	return s.Muted.Render(Circle)
}
