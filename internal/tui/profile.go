package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labmate-cli/internal/api"
	"labmate-cli/internal/creds"
	"labmate-cli/internal/model"
	"labmate-cli/internal/session"
)

// Profile tab. Two modes: the read-only card over the cached profile, and
// the editor. A user without a profile is dropped straight into the editor
// in create mode and stays there until the first save succeeds.

const (
	fieldFirst = iota
	fieldLast
	fieldUniversity
	fieldContact
	fieldScholar
	fieldScopus
	fieldORCID
	fieldArxiv
	fieldSemantic
	editorInputCount
)

const (
	focusMajors      = editorInputCount
	focusBio         = editorInputCount + 1
	editorFocusCount = editorInputCount + 2

	// focusNone parks the form: no field focused, global keys live.
	focusNone = -1
)

var editorFieldLabels = [editorInputCount]string{
	"First name",
	"Last name",
	"University",
	"Contact",
	"Google Scholar",
	"Scopus",
	"ORCID",
	"arXiv",
	"Semantic Scholar",
}

type profileEditor struct {
	creating bool
	inputs   [editorInputCount]textinput.Model
	majors   tagEditor
	bio      textarea.Model
	focus    int

	invalidMajors bool
	errMsg        string
	busy          bool
}

// newProfileEditor builds the form, prefilled from the cached profile when
// editing an existing one.
func newProfileEditor(creating bool, from *model.Profile) profileEditor {
	placeholders := [editorInputCount]string{
		"Ada", "Lovelace", "University of London", "you@university.edu",
		"scholar id", "scopus id", "0000-0000-0000-0000", "arxiv author name", "semantic scholar id",
	}
	ed := profileEditor{creating: creating}
	for i := range ed.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 128
		ti.Width = 40
		ed.inputs[i] = ti
	}

	ed.majors = newTagEditor("add a major, press enter", rejectDuplicates)

	ed.bio = textarea.New()
	ed.bio.Placeholder = "Research interests, current projects... (markdown ok)"
	// No size limits: bios may exceed the bubbles defaults.
	ed.bio.CharLimit = 0
	ed.bio.MaxHeight = 0
	ed.bio.ShowLineNumbers = false
	ed.bio.SetHeight(4)
	ed.bio.FocusedStyle.CursorLine = ed.bio.BlurredStyle.CursorLine

	if from != nil {
		ed.inputs[fieldFirst].SetValue(from.FirstName)
		ed.inputs[fieldLast].SetValue(from.LastName)
		ed.inputs[fieldUniversity].SetValue(from.University)
		ed.inputs[fieldContact].SetValue(from.ContactInfo)
		ed.inputs[fieldScholar].SetValue(from.GoogleScholarID)
		ed.inputs[fieldScopus].SetValue(from.ScopusID)
		ed.inputs[fieldORCID].SetValue(from.ORCID)
		ed.inputs[fieldArxiv].SetValue(from.ArxivName)
		ed.inputs[fieldSemantic].SetValue(from.SemanticScholarID)
		ed.majors.SetTags(from.Majors())
		ed.bio.SetValue(from.Bio)
	}
	return ed
}

func (e *profileEditor) setFocus(i int) tea.Cmd {
	e.focus = i
	for j := range e.inputs {
		e.inputs[j].Blur()
	}
	e.majors.Blur()
	e.bio.Blur()
	switch {
	case i >= 0 && i < editorInputCount:
		return e.inputs[i].Focus()
	case i == focusMajors:
		return e.majors.Focus()
	case i == focusBio:
		return e.bio.Focus()
	}
	return nil
}

// values collects the form. Prefilled text fields are always sent, so a
// blanked one is a deliberate clear; external identifier fields left blank
// are omitted entirely and keep whatever the server has stored.
func (e *profileEditor) values() model.ProfileInput {
	str := func(i int) *string {
		v := strings.TrimSpace(e.inputs[i].Value())
		return &v
	}
	ident := func(i int) *string {
		v := strings.TrimSpace(e.inputs[i].Value())
		if v == "" {
			return nil
		}
		return &v
	}
	major := model.JoinMajors(e.majors.Tags())
	bio := strings.TrimSpace(e.bio.Value())
	return model.ProfileInput{
		FirstName:         str(fieldFirst),
		LastName:          str(fieldLast),
		University:        str(fieldUniversity),
		ContactInfo:       str(fieldContact),
		GoogleScholarID:   ident(fieldScholar),
		ScopusID:          ident(fieldScopus),
		ORCID:             ident(fieldORCID),
		ArxivName:         ident(fieldArxiv),
		SemanticScholarID: ident(fieldSemantic),
		Major:             &major,
		Bio:               &bio,
	}
}

// resetProfileTab decides what entering the tab shows: the create-mode
// editor for a profileless user, the card plus a publications fetch
// otherwise.
func (m *appModel) resetProfileTab() tea.Cmd {
	m.editor = nil
	m.ownArticles = nil
	m.profErr = ""
	m.profLoading = false
	switch m.session.Profile {
	case session.Missing:
		ed := newProfileEditor(true, nil)
		m.editor = &ed
		return m.editor.setFocus(0)
	case session.Present:
		return m.fetchOwnArticles()
	}
	return nil
}

func (m *appModel) fetchOwnArticles() tea.Cmd {
	if m.identity == nil {
		return nil
	}
	m.fetchSeq++
	seq := m.fetchSeq
	from := m.tab
	m.profLoading = true
	client := m.client
	userID := m.identity.ID

	return func() tea.Msg {
		arts, err := client.UserArticles(context.Background(), userID)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			// No linked publications yet; the card renders without them.
			arts, err = nil, nil
		}
		return ownArticlesMsg{seq: seq, tab: from, articles: arts, err: err}
	}
}

func (m appModel) applyOwnArticles(msg ownArticlesMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq || msg.tab != m.tab {
		// Stale response.
		return m, nil
	}
	m.profLoading = false
	if msg.err != nil {
		m.profErr = errorMessage(msg.err)
		return m, nil
	}
	m.profErr = ""
	m.ownArticles = msg.articles
	return m, nil
}

func (m appModel) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor != nil {
		return m.handleEditorKey(msg)
	}
	if msg.String() == "e" && m.profileCache != nil {
		ed := newProfileEditor(false, m.profileCache)
		m.editor = &ed
		return m, m.editor.setFocus(0)
	}
	if mm, cmd, ok := m.handleGlobalKey(msg); ok {
		return mm, cmd
	}
	return m, nil
}

func (m appModel) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ed := m.editor
	if ed.busy {
		// One submission at a time.
		return m, nil
	}
	if ed.focus == focusNone {
		switch msg.String() {
		case "i", "enter", "tab":
			return m, ed.setFocus(0)
		case "ctrl+s":
			return m.submitProfile()
		}
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+s":
		return m.submitProfile()
	case "esc", "ctrl+g":
		if ed.creating {
			// Nothing to fall back to until the first save lands; park
			// the form so sign-out and quit stay reachable.
			return m, ed.setFocus(focusNone)
		}
		m.editor = nil
		return m, nil
	case "tab":
		return m, ed.setFocus((ed.focus + 1) % editorFocusCount)
	case "shift+tab":
		return m, ed.setFocus((ed.focus + editorFocusCount - 1) % editorFocusCount)
	case "enter":
		// Single-line fields advance; majors commit a tag and the bio
		// takes the newline.
		if ed.focus < editorInputCount {
			return m, ed.setFocus(ed.focus + 1)
		}
	}
	switch {
	case ed.focus < editorInputCount:
		var cmd tea.Cmd
		ed.inputs[ed.focus], cmd = ed.inputs[ed.focus].Update(msg)
		return m, cmd
	case ed.focus == focusMajors:
		cmd := ed.majors.Update(msg)
		if ed.majors.Len() > 0 {
			ed.invalidMajors = false
		}
		return m, cmd
	default:
		var cmd tea.Cmd
		ed.bio, cmd = ed.bio.Update(msg)
		return m, cmd
	}
}

func (m appModel) submitProfile() (tea.Model, tea.Cmd) {
	ed := m.editor
	if ed.majors.Len() == 0 {
		ed.invalidMajors = true
		ed.errMsg = "add at least one major"
		return m, ed.setFocus(focusMajors)
	}
	ed.invalidMajors = false
	ed.errMsg = ""
	ed.busy = true

	input := ed.values()
	creating := ed.creating
	client := m.client
	store := m.creds

	return m, func() tea.Msg {
		ctx := context.Background()
		var profile *model.Profile
		var err error
		if creating {
			profile, err = client.CreateProfile(ctx, input)
		} else {
			profile, err = client.UpdateProfile(ctx, input)
		}
		if err != nil {
			return profileSavedMsg{created: creating, err: err}
		}
		if name := profile.DisplayName(); name != "" {
			_ = store.SetMeta(ctx, creds.KeyDisplayName, name)
		}
		return profileSavedMsg{profile: profile, created: creating}
	}
}

func (m appModel) applyProfileSaved(msg profileSavedMsg) (tea.Model, tea.Cmd) {
	if m.editor != nil {
		m.editor.busy = false
	}
	if msg.err != nil {
		if m.editor != nil {
			m.editor.errMsg = errorMessage(msg.err)
		}
		return m, nil
	}

	// The cache write happens regardless of where the user is now; the
	// saved profile is session state, not view state.
	m.profileCache = msg.profile
	m.session.Profile = session.Present
	if name := msg.profile.DisplayName(); name != "" {
		m.session.DisplayName = name
	}
	if m.tab == tabProfile {
		m.editor = nil
	}
	if msg.created {
		return m.setFlash("Profile created. The full dashboard is unlocked.")
	}
	return m.setFlash("Profile saved.")
}

var editorLabelStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Width(17)

func (m appModel) viewProfileEditor(width, height int) string {
	ed := m.editor
	var b strings.Builder

	if ed.creating {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Create your profile"))
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("Search, feeds and team requests unlock after this is saved."))
	} else {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Edit profile"))
	}
	b.WriteString("\n\n")

	inputW := min(width-18, 44)
	if inputW < 20 {
		inputW = 20
	}
	for i := range ed.inputs {
		b.WriteString(editorLabelStyle.Render(editorFieldLabels[i]))
		b.WriteString(renderInputLine(inputW, ed.inputs[i].View()))
		b.WriteString("\n")
	}

	majorsLabel := "Majors"
	if ed.invalidMajors {
		b.WriteString(styleError().Width(17).Render(majorsLabel))
	} else {
		b.WriteString(editorLabelStyle.Render(majorsLabel))
	}
	b.WriteString("\n")
	b.WriteString(ed.majors.View(inputW))
	b.WriteString("\n\n")

	b.WriteString(editorLabelStyle.Render("Bio"))
	b.WriteString("\n")
	ed.bio.SetWidth(min(width-2, 64))
	b.WriteString(ed.bio.View())
	b.WriteString("\n\n")

	if ed.errMsg != "" {
		b.WriteString(styleError().Render(ed.errMsg))
		b.WriteString("\n")
	}
	switch {
	case ed.busy:
		b.WriteString(styleMuted().Render("saving..."))
	case ed.focus == focusNone:
		b.WriteString(styleMuted().Render("i: edit fields   ctrl+s: save"))
	case ed.creating:
		b.WriteString(styleMuted().Render("ctrl+s: save   tab: next field   esc: done typing"))
	default:
		b.WriteString(styleMuted().Render("ctrl+s: save   tab: next field   esc: cancel"))
	}
	return b.String()
}

func (m appModel) viewProfile(width, height int) string {
	if m.editor != nil {
		return m.viewProfileEditor(width, height)
	}
	if m.profileCache == nil {
		return styleMuted().Render("No profile yet.")
	}
	var b strings.Builder
	b.WriteString(renderProfileCard(m.profileCache, m.ownArticles, width))
	b.WriteString("\n")
	switch {
	case m.profLoading:
		b.WriteString(styleMuted().Render("loading publications..."))
		b.WriteString("\n")
	case m.profErr != "":
		b.WriteString(styleError().Render(m.profErr))
		b.WriteString("\n")
	}
	b.WriteString(styleMuted().Render("e: edit profile"))
	return b.String()
}

// renderProfileCard is shared by the own-profile tab and the search detail
// pane. arts may be nil; the card then falls back to the counters stored on
// the profile row.
func renderProfileCard(p *model.Profile, arts *model.UserArticles, width int) string {
	if width > 80 {
		width = 80
	}
	var b strings.Builder

	name := p.DisplayName()
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(name))
	b.WriteString("\n")

	if line := joinNonEmpty(" "+glyphDot()+" ", p.University, strings.Join(p.Majors(), ", ")); line != "" {
		b.WriteString(styleMuted().Render(line))
		b.WriteString("\n")
	}
	if p.ContactInfo != "" {
		b.WriteString(styleMuted().Render("contact: " + p.ContactInfo))
		b.WriteString("\n")
	}
	for _, l := range profileLinks(p) {
		b.WriteString(styleMuted().Render(l))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(metricsLine(p, arts))
	b.WriteString("\n")

	if p.Bio != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdownCompact(p.Bio, width))
		b.WriteString("\n")
	}

	if arts != nil && len(arts.Articles) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Publications (%d)", arts.Total)))
		b.WriteString("\n")
		shown := arts.Articles
		const maxShown = 6
		if len(shown) > maxShown {
			shown = shown[:maxShown]
		}
		for _, a := range shown {
			line := glyphDot() + " " + a.Title
			if a.Year > 0 {
				line += fmt.Sprintf(" (%d)", a.Year)
			}
			b.WriteString(ansiTruncate(line, width))
			b.WriteString("\n")
		}
		if rest := len(arts.Articles) - len(shown); rest > 0 {
			b.WriteString(styleMuted().Render(fmt.Sprintf("... and %d more", rest)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func profileLinks(p *model.Profile) []string {
	var out []string
	add := func(label, v string) {
		if v != "" {
			out = append(out, label+": "+v)
		}
	}
	add("scholar", p.GoogleScholarID)
	add("scopus", p.ScopusID)
	add("orcid", p.ORCID)
	add("arxiv", p.ArxivName)
	add("semantic scholar", p.SemanticScholarID)
	return out
}

func metricsLine(p *model.Profile, arts *model.UserArticles) string {
	cit, h, i10, pubs := p.CitationsTotal, p.HIndex, p.I10Index, p.PublicationCount
	if arts != nil {
		m := arts.Metrics
		cit, h, i10, pubs = m.CitationsTotal, m.HIndex, m.I10Index, m.PublicationCount
	}
	dot := " " + glyphDot() + " "
	return fmt.Sprintf("%d citations%sh-index %d%si10 %d%s%d publications", cit, dot, h, dot, i10, dot, pubs)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
