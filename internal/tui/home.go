package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The home tab is the public article feed: most-cited first, selectable
// list on the left, abstract pane on the right. Guests see it too: the
// feed endpoint needs no session.

const feedLimit = 50

func (m *appModel) resetHome() {
	m.homeList.SetItems(nil)
	m.homeLoading = false
	m.homeErr = ""
}

func (m *appModel) fetchFeed() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	from := m.tab
	m.homeLoading = true
	client := m.client

	return func() tea.Msg {
		articles, err := client.ListArticles(context.Background(), "", feedLimit)
		return feedMsg{seq: seq, tab: from, articles: articles, err: err}
	}
}

func (m appModel) applyFeed(msg feedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || msg.tab != m.tab {
		// Stale response (tab switched mid-flight).
		return m, nil
	}
	m.homeLoading = false
	if msg.err != nil {
		m.homeErr = errorMessage(msg.err)
		return m, nil
	}
	m.homeErr = ""
	items := make([]list.Item, 0, len(msg.articles))
	for _, a := range msg.articles {
		items = append(items, articleItem{article: a})
	}
	m.homeList.SetItems(items)
	return m, nil
}

func (m appModel) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if mm, cmd, ok := m.handleGlobalKey(msg); ok {
		return mm, cmd
	}
	var cmd tea.Cmd
	m.homeList, cmd = m.homeList.Update(msg)
	return m, cmd
}

func (m appModel) viewHome(width, height int) string {
	if m.homeLoading {
		return styleMuted().Render("loading the feed...")
	}
	if m.homeErr != "" {
		return styleError().Render(m.homeErr) + "\n" + styleMuted().Render("r: retry")
	}
	if len(m.homeList.Items()) == 0 {
		return styleMuted().Render("No articles yet.")
	}

	leftWidth := width / 2
	if leftWidth < 40 {
		leftWidth = 40
	}
	rightWidth := width - leftWidth - 2
	if rightWidth < 30 {
		rightWidth = 30
	}
	left := m.homeList.View()

	var detail string
	if it, ok := m.homeList.SelectedItem().(articleItem); ok {
		detail = renderArticleDetail(it, rightWidth)
	} else {
		detail = styleMuted().Render("No article selected.")
	}
	detail = lipgloss.NewStyle().Width(rightWidth).MaxHeight(height).Render(detail)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", detail)
}

func renderArticleDetail(it articleItem, width int) string {
	a := it.article
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(width).Render(strings.TrimSpace(a.Title)))
	b.WriteString("\n")

	meta := make([]string, 0, 4)
	if a.Year > 0 {
		meta = append(meta, fmt.Sprintf("%d", a.Year))
	}
	if v := strings.TrimSpace(a.Venue); v != "" {
		meta = append(meta, v)
	}
	meta = append(meta, fmt.Sprintf("%d citations", a.Citations))
	if s := strings.TrimSpace(a.Source); s != "" {
		meta = append(meta, s)
	}
	b.WriteString(styleMuted().Render(strings.Join(meta, " "+glyphDot()+" ")))
	b.WriteString("\n")

	if len(a.AuthorsList) > 0 {
		b.WriteString(lipgloss.NewStyle().Width(width).Render(strings.Join(a.AuthorsList, ", ")))
		b.WriteString("\n")
	}
	links := make([]string, 0, 2)
	if d := strings.TrimSpace(a.DOI); d != "" {
		links = append(links, "doi:"+d)
	}
	if u := strings.TrimSpace(a.URL); u != "" {
		links = append(links, u)
	}
	if len(links) > 0 {
		b.WriteString(styleMuted().Render(strings.Join(links, "  ")))
		b.WriteString("\n")
	}
	if ab := strings.TrimSpace(a.Abstract); ab != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdownCompact(ab, width))
	}
	return b.String()
}
