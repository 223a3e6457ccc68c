package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminal apps can't change the user's actual font. Instead, we can choose
// between Unicode and ASCII glyph sets for UI affordances (the lock badge,
// separators, arrows). This helps on terminals/fonts that don't render some
// glyphs cleanly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("LABMATE_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

// glyphLock marks the pinned profile tab while navigation is locked.
func glyphLock() string {
	if glyphs() == glyphSetASCII {
		return "[!]"
	}
	return "🔒"
}

// glyphDot separates entries in the tab bar and metadata rows.
func glyphDot() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "·"
}

// glyphArrow points from a request to its recommended collaborators.
func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}
