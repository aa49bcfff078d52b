package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderNotes(t *testing.T) {
	notes := "## Changes\n\nFixed the group sync crash."

	out := RenderNotes(notes, "ascii", 80)
	assert.Contains(t, out, "Changes")
	assert.Contains(t, out, "group sync crash")
}

func TestRenderNotes_Plain(t *testing.T) {
	assert.Equal(t, "## Changes", RenderNotes("  ## Changes \n", "plain", 80))
}

func TestRenderNotes_Empty(t *testing.T) {
	assert.Empty(t, RenderNotes("   ", "dark", 80))
}

func TestRenderNotes_UnknownStyleFallsBack(t *testing.T) {
	assert.Equal(t, "hello", RenderNotes("hello", "no-such-style", 80))
}
