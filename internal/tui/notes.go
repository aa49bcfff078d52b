package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderNotes renders markdown release notes with the named glamour style
// ("dark", "light", "ascii", "notty"). "plain" and rendering failures
// return the trimmed input unchanged.
func RenderNotes(notes, style string, width int) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}

	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = "dark"
	}
	if style == "plain" {
		return notes
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return notes
	}
	out, err := renderer.Render(notes)
	if err != nil {
		return notes
	}
	return strings.TrimSpace(out)
}
