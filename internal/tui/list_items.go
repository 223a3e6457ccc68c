package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"labmate-cli/internal/model"
)

func newList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// We render our own header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	// The app owns quit (ctrl+c) and back (esc); the list must not.
	l.DisableQuitKeybindings()
	// Emacs-style navigation aliases (common muscle memory).
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

type articleItem struct {
	article model.Article
}

func (i articleItem) FilterValue() string {
	return strings.TrimSpace(i.article.Title)
}

func (i articleItem) Title() string {
	title := strings.TrimSpace(i.article.Title)
	if title == "" {
		title = "(untitled)"
	}
	if i.article.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, i.article.Year)
	}
	return title
}

func (i articleItem) Description() string {
	parts := make([]string, 0, 3)
	if v := strings.TrimSpace(i.article.Venue); v != "" {
		parts = append(parts, v)
	}
	parts = append(parts, fmt.Sprintf("%d citations", i.article.Citations))
	if len(i.article.AuthorsList) > 0 {
		parts = append(parts, strings.Join(i.article.AuthorsList, ", "))
	}
	return strings.Join(parts, " "+glyphDot()+" ")
}

type resultItem struct {
	summary model.ProfileSummary
}

func (i resultItem) FilterValue() string {
	return strings.Join([]string{
		i.summary.DisplayName(), i.summary.University, i.summary.Major,
	}, " ")
}

func (i resultItem) Title() string { return i.summary.DisplayName() }

func (i resultItem) Description() string {
	parts := make([]string, 0, 2)
	if v := strings.TrimSpace(i.summary.University); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(i.summary.Major); v != "" {
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return "(no details yet)"
	}
	return strings.Join(parts, " "+glyphDot()+" ")
}

type requestItem struct {
	request model.TeamRequest
}

func (i requestItem) FilterValue() string {
	return strings.TrimSpace(i.request.Title)
}

func (i requestItem) Title() string {
	title := strings.TrimSpace(i.request.Title)
	if title == "" {
		title = "(untitled request)"
	}
	if !i.request.IsActive {
		return title + " (closed)"
	}
	return title
}

func (i requestItem) Description() string {
	desc := "roles: " + strings.Join(i.request.RequiredRoles, ", ")
	if n := len(i.request.Recommendations); n > 0 {
		desc += fmt.Sprintf(" %s %d recommended", glyphArrow(), n)
	}
	return desc
}
