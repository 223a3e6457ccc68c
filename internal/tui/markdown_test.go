package tui

import (
	"strings"
	"testing"
)

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	t.Setenv("LABMATE_TUI_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")
	t.Setenv("LABMATE_TUI_DARKBG", "")

	t.Setenv("LABMATE_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("LABMATE_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_MDStyleOverridesTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("LABMATE_TUI_DARKBG", "")
	t.Setenv("LABMATE_TUI_THEME", "light")

	t.Setenv("LABMATE_TUI_MD_STYLE", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyleConfig_AlignsLinksWithAccent(t *testing.T) {
	t.Run("dark", func(t *testing.T) {
		cfg := markdownStyleConfig("dark")
		if got := strPtrValue(cfg.Link.Color); got != colorAccent.Dark {
			t.Fatalf("Link.Color: got %q want %q", got, colorAccent.Dark)
		}
		if cfg.Link.Underline == nil || !*cfg.Link.Underline {
			t.Fatalf("expected links underlined")
		}
	})

	t.Run("light", func(t *testing.T) {
		cfg := markdownStyleConfig("light")
		if got := strPtrValue(cfg.Link.Color); got != colorAccent.Light {
			t.Fatalf("Link.Color: got %q want %q", got, colorAccent.Light)
		}
	})
}

func TestRenderMarkdownCompact_FallsBackToRawOnEmpty(t *testing.T) {
	if got := renderMarkdownCompact("", 40); got != "" {
		t.Fatalf("expected empty output; got %q", got)
	}
	if got := renderMarkdownCompact("   \n ", 40); got != "" {
		t.Fatalf("expected whitespace collapsed to empty; got %q", got)
	}
}

func TestRenderMarkdownCompact_KeepsBodyText(t *testing.T) {
	out := renderMarkdownCompact("working on **analytical** engines", 60)
	if !strings.Contains(out, "analytical") {
		t.Fatalf("expected the body text present; got %q", out)
	}
}

func strPtrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
