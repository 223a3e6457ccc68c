package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMajorsEditorRejectsExactDuplicates(t *testing.T) {
	t.Parallel()

	e := newTagEditor("major", rejectDuplicates)
	if !e.Add("NLP") {
		t.Fatalf("first add rejected")
	}
	if e.Add("NLP") {
		t.Fatalf("duplicate add accepted")
	}
	if got := e.Tags(); len(got) != 1 || got[0] != "NLP" {
		t.Fatalf("expected [NLP]; got %v", got)
	}
}

func TestRolesEditorKeepsDuplicatesInOrder(t *testing.T) {
	t.Parallel()

	e := newTagEditor("role", allowDuplicates)
	e.Add("Backend")
	e.Add("Backend")
	got := e.Tags()
	if len(got) != 2 || got[0] != "Backend" || got[1] != "Backend" {
		t.Fatalf("expected both Backend entries preserved; got %v", got)
	}
}

func TestAddTrimsAndRejectsEmpty(t *testing.T) {
	t.Parallel()

	e := newTagEditor("major", rejectDuplicates)
	if e.Add("   ") {
		t.Fatalf("whitespace-only tag accepted")
	}
	if !e.Add("  Information Retrieval  ") {
		t.Fatalf("padded tag rejected")
	}
	if got := e.Tags(); got[0] != "Information Retrieval" {
		t.Fatalf("expected trimmed tag; got %q", got[0])
	}
}

func TestBackspaceOnEmptyInputRemovesNewestTag(t *testing.T) {
	t.Parallel()

	e := newTagEditor("major", rejectDuplicates)
	e.Add("NLP")
	e.Add("IR")
	e.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := e.Tags(); len(got) != 1 || got[0] != "NLP" {
		t.Fatalf("expected newest tag removed; got %v", got)
	}
}

func TestEnterCommitsTypedTag(t *testing.T) {
	t.Parallel()

	e := newTagEditor("major", rejectDuplicates)
	e.input.SetValue("Robotics")
	e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := e.Tags(); len(got) != 1 || got[0] != "Robotics" {
		t.Fatalf("expected committed tag; got %v", got)
	}
	if e.input.Value() != "" {
		t.Fatalf("expected input cleared after commit; got %q", e.input.Value())
	}
}

func TestSetTagsReappliesPolicy(t *testing.T) {
	t.Parallel()

	e := newTagEditor("major", rejectDuplicates)
	e.SetTags([]string{"NLP", "NLP", "IR", " "})
	if got := e.Tags(); len(got) != 2 || got[0] != "NLP" || got[1] != "IR" {
		t.Fatalf("expected prefilled set deduplicated; got %v", got)
	}
}
