package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labmate-cli/internal/model"
)

// Create tab: the team-request composer on top, the user's existing
// requests underneath. The draft lives only while the tab is open; leaving
// the tab or submitting successfully discards it.

const (
	composeTitle = iota
	composeRoles
	composeDesc
	composeFocusCount
)

type composerForm struct {
	title textinput.Model
	roles tagEditor
	desc  textarea.Model
	focus int

	invalidRoles bool
	errMsg       string
	busy         bool
}

func newComposerForm() composerForm {
	title := textinput.New()
	title.Prompt = ""
	title.Placeholder = "Looking for co-authors on ..."
	title.CharLimit = 128
	title.Width = 44

	desc := textarea.New()
	desc.Placeholder = "What the project is and who you need (markdown ok)"
	desc.CharLimit = 0
	desc.MaxHeight = 0
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.FocusedStyle.CursorLine = desc.BlurredStyle.CursorLine

	return composerForm{
		title: title,
		// Duplicate labels allowed: a team can need two Backend people.
		roles: newTagEditor("add a required role, press enter", allowDuplicates),
		desc:  desc,
	}
}

func (f *composerForm) setFocus(i int) tea.Cmd {
	f.focus = i
	f.title.Blur()
	f.roles.Blur()
	f.desc.Blur()
	switch i {
	case composeTitle:
		return f.title.Focus()
	case composeRoles:
		return f.roles.Focus()
	case composeDesc:
		return f.desc.Focus()
	}
	return nil
}

func (f *composerForm) draft() model.TeamRequestInput {
	return model.TeamRequestInput{
		Title:         strings.TrimSpace(f.title.Value()),
		Description:   strings.TrimSpace(f.desc.Value()),
		RequiredRoles: f.roles.Tags(),
	}
}

func (m *appModel) resetCreateTab() tea.Cmd {
	f := newComposerForm()
	m.composer = &f
	m.lastCreated = nil
	return tea.Batch(m.composer.setFocus(composeTitle), m.fetchMyRequests())
}

func (m *appModel) fetchMyRequests() tea.Cmd {
	m.fetchSeq++
	seq := m.fetchSeq
	from := m.tab
	m.reqLoading = true
	client := m.client

	return func() tea.Msg {
		requests, err := client.MyTeamRequests(context.Background())
		return myRequestsMsg{seq: seq, tab: from, requests: requests, err: err}
	}
}

func (m appModel) applyMyRequests(msg myRequestsMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || msg.tab != m.tab {
		// Stale response.
		return m, nil
	}
	m.reqLoading = false
	if msg.err != nil {
		m.reqErr = errorMessage(msg.err)
		return m, nil
	}
	m.reqErr = ""
	items := make([]list.Item, 0, len(msg.requests))
	for _, r := range msg.requests {
		items = append(items, requestItem{request: r})
	}
	m.reqList.SetItems(items)
	return m, nil
}

func (m appModel) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lastCreated != nil {
		switch msg.String() {
		case "n", "enter":
			m.lastCreated = nil
			return m, m.composer.setFocus(composeTitle)
		}
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		var cmd tea.Cmd
		m.reqList, cmd = m.reqList.Update(msg)
		return m, cmd
	}
	return m.handleComposerKey(msg)
}

func (m appModel) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.composer
	if f.busy {
		// One submission at a time.
		return m, nil
	}
	if f.focus == focusNone {
		switch msg.String() {
		case "i", "enter", "tab":
			return m, f.setFocus(composeTitle)
		case "ctrl+s":
			return m.submitRequest()
		}
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		var cmd tea.Cmd
		m.reqList, cmd = m.reqList.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "ctrl+s":
		return m.submitRequest()
	case "esc", "ctrl+g":
		// Park the form; the draft survives until the tab is left.
		return m, f.setFocus(focusNone)
	case "tab":
		return m, f.setFocus((f.focus + 1) % composeFocusCount)
	case "shift+tab":
		return m, f.setFocus((f.focus + composeFocusCount - 1) % composeFocusCount)
	case "enter":
		if f.focus == composeTitle {
			return m, f.setFocus(composeRoles)
		}
	}
	switch f.focus {
	case composeTitle:
		var cmd tea.Cmd
		f.title, cmd = f.title.Update(msg)
		return m, cmd
	case composeRoles:
		cmd := f.roles.Update(msg)
		if f.roles.Len() > 0 {
			f.invalidRoles = false
		}
		return m, cmd
	default:
		var cmd tea.Cmd
		f.desc, cmd = f.desc.Update(msg)
		return m, cmd
	}
}

func (m appModel) submitRequest() (tea.Model, tea.Cmd) {
	f := m.composer
	if f.roles.Len() == 0 {
		// Rejected before any network call.
		f.invalidRoles = true
		f.errMsg = "add at least one required role"
		return m, f.setFocus(composeRoles)
	}
	f.invalidRoles = false
	f.errMsg = ""
	f.busy = true

	draft := f.draft()
	client := m.client

	return m, func() tea.Msg {
		req, err := client.CreateTeamRequest(context.Background(), draft)
		return requestCreatedMsg{request: req, err: err}
	}
}

func (m appModel) applyRequestCreated(msg requestCreatedMsg) (tea.Model, tea.Cmd) {
	if m.tab != tabCreate || m.composer == nil {
		// The draft was already discarded by navigation; nothing to show.
		return m, nil
	}
	m.composer.busy = false
	if msg.err != nil {
		m.composer.errMsg = errorMessage(msg.err)
		return m, nil
	}
	f := newComposerForm()
	m.composer = &f
	m.lastCreated = msg.request
	mm, flashCmd := m.setFlash("Request posted.")
	fetchCmd := mm.fetchMyRequests()
	return mm, tea.Batch(flashCmd, fetchCmd)
}

func (m appModel) viewCreate(width, height int) string {
	var b strings.Builder
	if m.lastCreated != nil {
		b.WriteString(m.viewRequestPosted(width))
	} else {
		b.WriteString(m.viewComposer(width))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("My requests"))
	b.WriteString("\n")
	switch {
	case m.reqLoading:
		b.WriteString(styleMuted().Render("loading..."))
	case m.reqErr != "":
		b.WriteString(styleError().Render(m.reqErr))
	case len(m.reqList.Items()) == 0:
		b.WriteString(styleMuted().Render("No requests yet."))
	default:
		b.WriteString(m.reqList.View())
	}
	return b.String()
}

func (m appModel) viewComposer(width int) string {
	f := m.composer
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("New team request"))
	b.WriteString("\n\n")

	inputW := min(width-18, 48)
	if inputW < 20 {
		inputW = 20
	}

	b.WriteString(editorLabelStyle.Render("Title"))
	b.WriteString(renderInputLine(inputW, f.title.View()))
	b.WriteString("\n")

	rolesLabel := "Required roles"
	if f.invalidRoles {
		b.WriteString(styleError().Width(17).Render(rolesLabel))
	} else {
		b.WriteString(editorLabelStyle.Render(rolesLabel))
	}
	b.WriteString("\n")
	b.WriteString(f.roles.View(inputW))
	b.WriteString("\n\n")

	b.WriteString(editorLabelStyle.Render("Description"))
	b.WriteString("\n")
	f.desc.SetWidth(min(width-2, 64))
	b.WriteString(f.desc.View())
	b.WriteString("\n\n")

	if f.errMsg != "" {
		b.WriteString(styleError().Render(f.errMsg))
		b.WriteString("\n")
	}
	switch {
	case f.busy:
		b.WriteString(styleMuted().Render("posting..."))
	case f.focus == focusNone:
		b.WriteString(styleMuted().Render("i: edit fields   ctrl+s: post"))
	default:
		b.WriteString(styleMuted().Render("ctrl+s: post   tab: next field   esc: done typing"))
	}
	return b.String()
}

func (m appModel) viewRequestPosted(width int) string {
	req := m.lastCreated
	var b strings.Builder
	b.WriteString(styleSuccess().Render("Request posted."))
	b.WriteString("\n")
	b.WriteString(ansiTruncate(req.Title, width))
	b.WriteString("\n")
	if len(req.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("Recommended collaborators:"))
		b.WriteString("\n")
		for _, u := range req.Recommendations {
			name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
			if name == "" {
				name = u.Email
			}
			line := glyphDot() + " " + name
			if u.Major != "" {
				line += " (" + u.Major + ")"
			}
			b.WriteString(ansiTruncate(line, width))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("n: new request"))
	return b.String()
}
