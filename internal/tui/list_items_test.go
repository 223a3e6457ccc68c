package tui

import (
	"testing"

	"labmate-cli/internal/model"
)

func TestNewList_DoesNotOwnQuitKeys(t *testing.T) {
	t.Parallel()

	l := newList(nil)
	if l.KeyMap.Quit.Enabled() {
		t.Fatalf("expected quit keybindings disabled; the app owns quit")
	}
	if l.KeyMap.ForceQuit.Enabled() {
		t.Fatalf("expected force-quit keybindings disabled")
	}
}

func TestNewList_EmacsAliases(t *testing.T) {
	t.Parallel()

	l := newList(nil)
	has := func(keys []string, want string) bool {
		for _, k := range keys {
			if k == want {
				return true
			}
		}
		return false
	}
	if !has(l.KeyMap.CursorUp.Keys(), "ctrl+p") {
		t.Fatalf("expected ctrl+p cursor alias; got %v", l.KeyMap.CursorUp.Keys())
	}
	if !has(l.KeyMap.CursorDown.Keys(), "ctrl+n") {
		t.Fatalf("expected ctrl+n cursor alias; got %v", l.KeyMap.CursorDown.Keys())
	}
}

func TestArticleItemTitleCarriesYear(t *testing.T) {
	t.Parallel()

	it := articleItem{article: model.Article{Title: "Attention Is All You Need", Year: 2017}}
	if got := it.Title(); got != "Attention Is All You Need (2017)" {
		t.Fatalf("unexpected title %q", got)
	}

	bare := articleItem{article: model.Article{Title: "  "}}
	if got := bare.Title(); got != "(untitled)" {
		t.Fatalf("expected placeholder for a blank title; got %q", got)
	}
}

func TestRequestItemMarksClosedRequests(t *testing.T) {
	t.Parallel()

	it := requestItem{request: model.TeamRequest{Title: "Benchmark team", IsActive: false}}
	if got := it.Title(); got != "Benchmark team (closed)" {
		t.Fatalf("unexpected title %q", got)
	}

	open := requestItem{request: model.TeamRequest{Title: "Benchmark team", IsActive: true}}
	if got := open.Title(); got != "Benchmark team" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestResultItemFallsBackToPlaceholderDetails(t *testing.T) {
	t.Parallel()

	it := resultItem{summary: model.ProfileSummary{FirstName: "Grace"}}
	if got := it.Description(); got != "(no details yet)" {
		t.Fatalf("unexpected description %q", got)
	}
}
