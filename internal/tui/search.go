package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"labmate-cli/internal/model"
)

// The search tab finds researchers by name, university, major or bio.
// Opening a result is the one "route with a parameter": a read-only profile
// view for that user id, with their publications underneath.

const searchLimit = 20

// personDetail is the opened result. userID is the route parameter; the
// profile and articles stream in behind it.
type personDetail struct {
	userID   int
	loading  bool
	err      string
	profile  *model.Profile
	articles *model.UserArticles
}

func (m *appModel) resetSearch() {
	m.searchInput.SetValue("")
	m.searchList.SetItems(nil)
	m.searchLoading = false
	m.searchErr = ""
	m.searched = false
	m.person = nil
}

func (m *appModel) startSearch(query string) tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	from := m.tab
	m.searchLoading = true
	m.searched = true
	m.person = nil
	client := m.client

	return func() tea.Msg {
		results, err := client.SearchProfiles(context.Background(), query, searchLimit)
		return searchResultsMsg{seq: seq, tab: from, results: results, err: err}
	}
}

func (m appModel) applySearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || msg.tab != m.tab {
		// Stale response: the user already moved on.
		return m, nil
	}
	m.searchLoading = false
	if msg.err != nil {
		m.searchErr = errorMessage(msg.err)
		return m, nil
	}
	m.searchErr = ""
	items := make([]list.Item, 0, len(msg.results))
	for _, s := range msg.results {
		items = append(items, resultItem{summary: s})
	}
	m.searchList.SetItems(items)
	return m, nil
}

// openPerson dispatches the detail fetch for one result row.
func (m *appModel) openPerson(userID int) tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	from := m.tab
	m.person = &personDetail{userID: userID, loading: true}
	client := m.client

	return func() tea.Msg {
		ctx := context.Background()
		profile, err := client.FetchProfile(ctx, userID)
		if err != nil {
			return personMsg{seq: seq, tab: from, err: err}
		}
		// Publication data is best-effort; a profile without parsed
		// articles still renders.
		articles, artErr := client.UserArticles(ctx, userID)
		if artErr != nil {
			articles = nil
		}
		return personMsg{seq: seq, tab: from, profile: profile, articles: articles}
	}
}

func (m appModel) applyPerson(msg personMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || msg.tab != m.tab || m.person == nil {
		return m, nil
	}
	m.person.loading = false
	if msg.err != nil {
		m.person.err = errorMessage(msg.err)
		return m, nil
	}
	m.person.profile = msg.profile
	m.person.articles = msg.articles
	return m, nil
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Detail pane open: esc goes back to the result list.
	if m.person != nil {
		switch msg.String() {
		case "esc", "backspace":
			m.person = nil
			return m, nil
		}
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		return m, nil
	}

	if m.searchInput.Focused() {
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.searchInput.Value())
			if q == "" {
				return m, nil
			}
			m.searchInput.Blur()
			cmd := m.startSearch(q)
			return m, cmd
		case "esc":
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "/":
		cmd := m.searchInput.Focus()
		return m, cmd
	case "enter":
		if it, ok := m.searchList.SelectedItem().(resultItem); ok {
			cmd := m.openPerson(it.summary.UserID)
			return m, cmd
		}
		return m, nil
	case "esc":
		cmd := m.searchInput.Focus()
		return m, cmd
	}
	if mm, cmd, ok := m.handleGlobalKey(msg); ok {
		return mm, cmd
	}
	var cmd tea.Cmd
	m.searchList, cmd = m.searchList.Update(msg)
	return m, cmd
}

func (m appModel) viewSearch(width, height int) string {
	var b strings.Builder
	b.WriteString(styleMuted().Render("Search researchers"))
	b.WriteString("\n")
	b.WriteString(renderInputLine(min(width, 60), m.searchInput.View()))
	b.WriteString("\n\n")

	body := height - 4
	if body < 4 {
		body = 4
	}

	switch {
	case m.person != nil:
		b.WriteString(m.viewPerson(width, body))
	case m.searchLoading:
		b.WriteString(styleMuted().Render("searching..."))
	case m.searchErr != "":
		b.WriteString(styleError().Render(m.searchErr))
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("r: retry"))
	case !m.searched:
		b.WriteString(styleMuted().Render("Type a name, university or major and press enter."))
	case len(m.searchList.Items()) == 0:
		b.WriteString(styleMuted().Render("No matching profiles."))
	default:
		b.WriteString(m.searchList.View())
	}
	return b.String()
}

func (m appModel) viewPerson(width, height int) string {
	p := m.person
	if p.loading {
		return styleMuted().Render("loading profile...")
	}
	if p.err != "" {
		return styleError().Render(p.err) + "\n" + styleMuted().Render("esc: back to results")
	}
	if p.profile == nil {
		return styleMuted().Render("No profile.")
	}
	card := renderProfileCard(p.profile, p.articles, width)
	return card + "\n" + styleMuted().Render("esc: back to results")
}
