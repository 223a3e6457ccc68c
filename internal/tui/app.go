package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labmate-cli/internal/api"
	"labmate-cli/internal/config"
	"labmate-cli/internal/creds"
	"labmate-cli/internal/model"
	"labmate-cli/internal/session"
)

const flashDuration = 4 * time.Second

type appModel struct {
	cfg    *config.Config
	client *api.Client
	creds  *creds.Store

	width  int
	height int

	view view

	session      session.State
	identity     *model.Identity
	profileCache *model.Profile

	// tab is the active dashboard view; fetchSeq tags every async fetch
	// so completions that outlived their tab are dropped.
	tab      tab
	fetchSeq int

	auth authForm

	homeList    list.Model
	homeLoading bool
	homeErr     string

	searchInput   textinput.Model
	searchList    list.Model
	searchLoading bool
	searchErr     string
	searched      bool
	person        *personDetail

	editor      *profileEditor
	ownArticles *model.UserArticles
	profLoading bool
	profErr     string

	composer    *composerForm
	lastCreated *model.TeamRequest
	reqList     list.Model
	reqLoading  bool
	reqErr      string

	picker     filepicker.Model
	importing  bool
	importPath string
	importRes  *model.ImportResult
	importErr  string

	flash   string
	flashID int
}

func newAppModel(cfg *config.Config, client *api.Client, store *creds.Store) appModel {
	searchInput := textinput.New()
	searchInput.Prompt = ""
	searchInput.Placeholder = "name, university or major"
	searchInput.CharLimit = 128
	searchInput.Width = 40

	return appModel{
		cfg:         cfg,
		client:      client,
		creds:       store,
		view:        viewBooting,
		auth:        newAuthForm(),
		homeList:    newList(nil),
		searchInput: searchInput,
		searchList:  newList(nil),
		reqList:     newList(nil),
		picker:      newUploadPicker(24),
	}
}

func (m appModel) Init() tea.Cmd { return m.bootstrapCmd() }

func (m appModel) bootstrapCmd() tea.Cmd {
	client, store := m.client, m.creds
	return func() tea.Msg {
		res, err := session.Bootstrap(context.Background(), client, store)
		return bootstrapDoneMsg{res: res, err: err}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case bootstrapDoneMsg:
		return m.applyBootstrap(msg)
	case authDoneMsg:
		return m.applyAuthResult(msg)

	case sessionExpiredMsg:
		// Login-view 401s are ordinary wrong-password responses; only a
		// live dashboard session can expire.
		if m.view != viewDashboard {
			return m, nil
		}
		debugLogf("session expired, returning to sign-in")
		return m.switchToAuth("your session expired, sign in again")
	case signedOutMsg:
		return m.switchToAuth("")

	case feedMsg:
		return m.applyFeed(msg)
	case searchResultsMsg:
		return m.applySearchResults(msg)
	case personMsg:
		return m.applyPerson(msg)
	case ownArticlesMsg:
		return m.applyOwnArticles(msg)
	case myRequestsMsg:
		return m.applyMyRequests(msg)
	case profileSavedMsg:
		return m.applyProfileSaved(msg)
	case requestCreatedMsg:
		return m.applyRequestCreated(msg)
	case importDoneMsg:
		return m.applyImportDone(msg)

	case flashClearMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateComponents(msg)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.view {
	case viewBooting:
		return m, nil
	case viewAuth:
		return m.handleAuthKey(msg)
	}
	switch m.tab {
	case tabHome:
		return m.updateHome(msg)
	case tabSearch:
		return m.updateSearch(msg)
	case tabCreate:
		return m.updateCreate(msg)
	case tabUpload:
		return m.updateUpload(msg)
	case tabProfile:
		return m.updateProfile(msg)
	}
	return m, nil
}

// handleGlobalKey covers the keys that work on every dashboard tab.
// Reports whether the key was consumed; callers fall through to their own
// bindings otherwise.
func (m appModel) handleGlobalKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	s := msg.String()
	switch s {
	case "q":
		return m, tea.Quit, true
	case "x":
		store := m.creds
		return m, func() tea.Msg {
			_ = session.Logout(context.Background(), store)
			return signedOutMsg{}
		}, true
	case "r":
		cmd := m.retryFetch()
		return m, cmd, true
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		tabs := tabsForRole(m.session.Role)
		if idx := int(s[0] - '1'); idx < len(tabs) {
			cmd := m.goTo(tabs[idx])
			return m, cmd, true
		}
		return m, nil, true
	}
	return m, nil, false
}

// retryFetch re-runs the active tab's fetch without touching form drafts.
func (m *appModel) retryFetch() tea.Cmd {
	switch m.tab {
	case tabHome:
		m.resetHome()
		return m.fetchFeed()
	case tabSearch:
		if m.person != nil {
			return m.openPerson(m.person.userID)
		}
		if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
			return m.startSearch(q)
		}
	case tabCreate:
		return m.fetchMyRequests()
	case tabProfile:
		if m.editor == nil {
			return m.fetchOwnArticles()
		}
	}
	return nil
}

func (m appModel) canGo(t tab) bool {
	if m.session.Locked() {
		// Everything except the profile editor is unreachable until the
		// first profile save.
		return t == tabProfile
	}
	for _, allowed := range tabsForRole(m.session.Role) {
		if t == allowed {
			return true
		}
	}
	return false
}

// goTo switches tabs: it re-renders the target and kicks its fetch.
// Re-entering the current tab acts as a refresh. Any in-flight fetch is
// orphaned by the seq bump, whether or not the target starts a new one.
func (m *appModel) goTo(t tab) tea.Cmd {
	if !m.canGo(t) {
		return nil
	}
	leaving := m.tab
	m.tab = t
	m.fetchSeq++
	if leaving == tabCreate && t != tabCreate {
		// Drafts do not survive navigation.
		m.composer = nil
		m.lastCreated = nil
	}
	switch t {
	case tabHome:
		m.resetHome()
		return m.fetchFeed()
	case tabSearch:
		m.resetSearch()
		return m.searchInput.Focus()
	case tabCreate:
		return m.resetCreateTab()
	case tabUpload:
		return m.resetUploadTab()
	case tabProfile:
		return m.resetProfileTab()
	}
	return nil
}

func (m *appModel) applySession(res session.Result) {
	m.view = viewDashboard
	m.session = res.State
	m.profileCache = res.Profile
	if res.State.Role == session.Guest {
		m.identity = nil
	} else {
		id := res.Identity
		m.identity = &id
	}
}

func (m appModel) initialTab() tab {
	if m.session.Locked() {
		return tabProfile
	}
	return tabHome
}

func (m appModel) applyBootstrap(msg bootstrapDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthenticated) {
			// First run or wiped session: a bare sign-in view, no banner.
			return m.switchToAuth("")
		}
		return m.switchToAuth(errorMessage(msg.err))
	}
	m.applySession(msg.res)
	cmd := m.goTo(m.initialTab())
	return m, cmd
}

// switchToAuth drops every session-derived bit of state and shows the
// sign-in view. The seq bump orphans whatever fetches are still in flight.
func (m appModel) switchToAuth(errMsg string) (tea.Model, tea.Cmd) {
	m.view = viewAuth
	m.session = session.State{}
	m.identity = nil
	m.profileCache = nil
	m.tab = tabHome
	m.fetchSeq++
	m.editor = nil
	m.ownArticles = nil
	m.composer = nil
	m.lastCreated = nil
	m.person = nil
	m.flash = ""
	m.auth = newAuthForm()
	cmd := m.auth.reset(errMsg)
	return m, cmd
}

func (m appModel) setFlash(text string) (appModel, tea.Cmd) {
	m.flash = text
	m.flashID++
	id := m.flashID
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{id: id}
	})
}

// errorMessage renders any error for inline display. Gateway errors carry a
// presentable message already; everything else falls back to Error().
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// updateComponents routes non-key messages (cursor blinks, picker directory
// reads) to whichever input component is live.
func (m appModel) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == viewAuth:
		var cmds []tea.Cmd
		m.auth.email, cmd = m.auth.email.Update(msg)
		cmds = append(cmds, cmd)
		m.auth.password, cmd = m.auth.password.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case m.view != viewDashboard:
		return m, nil

	case m.tab == tabUpload:
		return m.updatePicker(msg)

	case m.tab == tabSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case m.tab == tabProfile && m.editor != nil:
		ed := m.editor
		switch {
		case ed.focus >= 0 && ed.focus < editorInputCount:
			ed.inputs[ed.focus], cmd = ed.inputs[ed.focus].Update(msg)
		case ed.focus == focusMajors:
			ed.majors.input, cmd = ed.majors.input.Update(msg)
		case ed.focus == focusBio:
			ed.bio, cmd = ed.bio.Update(msg)
		}
		return m, cmd

	case m.tab == tabCreate && m.composer != nil:
		f := m.composer
		switch f.focus {
		case composeTitle:
			f.title, cmd = f.title.Update(msg)
		case composeRoles:
			f.roles.input, cmd = f.roles.input.Update(msg)
		case composeDesc:
			f.desc, cmd = f.desc.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *appModel) resize() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	// Home is split: list left, abstract right.
	m.homeList.SetSize(max(40, w/2), h)
	m.searchList.SetSize(w, max(4, h-4))
	// The composer sits above the requests list.
	m.reqList.SetSize(w, max(3, h-18))
	m.picker.Height = uploadPickerHeight(m.height)
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	switch m.view {
	case viewBooting:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			styleMuted().Render("connecting..."))
	case viewAuth:
		return m.viewAuth()
	}

	header := m.renderHeader()
	bodyH := m.height - 6
	if bodyH < 8 {
		bodyH = 8
	}
	bodyW := m.width
	if bodyW < 40 {
		bodyW = 40
	}

	var body string
	switch m.tab {
	case tabHome:
		body = m.viewHome(bodyW, bodyH)
	case tabSearch:
		body = m.viewSearch(bodyW, bodyH)
	case tabCreate:
		body = m.viewCreate(bodyW, bodyH)
	case tabUpload:
		body = m.viewUpload(bodyW, bodyH)
	case tabProfile:
		body = m.viewProfile(bodyW, bodyH)
	}
	body = lipgloss.NewStyle().Width(bodyW).MaxHeight(bodyH).Render(body)

	return strings.Join([]string{header, body, m.renderFooter()}, "\n\n")
}

func (m appModel) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("LabMate")

	who := "guest"
	if name := strings.TrimSpace(m.session.DisplayName); name != "" {
		who = name
	}
	info := who + " " + glyphDot() + " " + m.session.Role.String()
	if m.session.Locked() {
		info = glyphLock() + " " + info
	}
	line := title + "  " + styleMuted().Render(info)

	return line + "\n" + m.renderTabBar()
}

func (m appModel) renderTabBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(colorChromeMutedFg).Padding(0, 1)

	var parts []string
	for i, t := range tabsForRole(m.session.Role) {
		label := strconv.Itoa(i+1) + " " + t.label()
		switch {
		case t == m.tab:
			parts = append(parts, active.Render(label))
		case m.session.Locked() && t != tabProfile:
			parts = append(parts, inactive.Render(glyphLock()+" "+t.label()))
		default:
			parts = append(parts, inactive.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m appModel) renderFooter() string {
	if strings.TrimSpace(m.flash) != "" {
		return styleSuccess().Render(m.flash)
	}
	if m.session.Locked() {
		return styleMuted().Render("complete your profile to unlock the other tabs   x: sign out   ctrl+c: quit")
	}
	signOut := "x: sign out"
	if m.session.Role == session.Guest {
		signOut = "x: sign in"
	}
	return styleMuted().Render("1-9: switch tab   " + signOut + "   q: quit")
}
