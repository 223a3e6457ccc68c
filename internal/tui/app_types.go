package tui

import (
	"labmate-cli/internal/model"
	"labmate-cli/internal/session"
)

type view int

const (
	viewBooting view = iota
	viewAuth
	viewDashboard
)

// tab identifies one dashboard view. Which tabs exist is a function of the
// resolved role; see tabsForRole.
type tab int

const (
	tabHome tab = iota
	tabSearch
	tabCreate
	tabUpload
	tabProfile
)

func (t tab) label() string {
	switch t {
	case tabHome:
		return "Home"
	case tabSearch:
		return "Search"
	case tabCreate:
		return "Create"
	case tabUpload:
		return "Upload"
	case tabProfile:
		return "Profile"
	default:
		return ""
	}
}

// tabsForRole is the role table: guests browse the public views, users get
// the collaboration views, admins get bulk import but no profile of their
// own (and no request composer).
func tabsForRole(role session.Role) []tab {
	switch role {
	case session.Admin:
		return []tab{tabHome, tabSearch, tabUpload}
	case session.User:
		return []tab{tabHome, tabSearch, tabCreate, tabProfile}
	default:
		return []tab{tabHome, tabSearch}
	}
}

// bootstrapDoneMsg completes the start-up session resolution.
type bootstrapDoneMsg struct {
	res session.Result
	err error
}

// authDoneMsg completes a login, register or continue-as-guest submission
// (each chains into a fresh bootstrap).
type authDoneMsg struct {
	res session.Result
	err error
}

// sessionExpiredMsg is injected by the API client's unauthenticated hook;
// it forces the login view no matter which tab is active.
type sessionExpiredMsg struct{}

// signedOutMsg completes a deliberate sign-out; unlike sessionExpiredMsg it
// carries no warning back to the login view.
type signedOutMsg struct{}

// Fetch completions carry the seq and tab captured at dispatch time; the
// update loop drops any that no longer match (stale response).
type feedMsg struct {
	seq      int
	tab      tab
	articles []model.Article
	err      error
}

type searchResultsMsg struct {
	seq     int
	tab     tab
	results []model.ProfileSummary
	err     error
}

type personMsg struct {
	seq      int
	tab      tab
	profile  *model.Profile
	articles *model.UserArticles
	err      error
}

type ownArticlesMsg struct {
	seq      int
	tab      tab
	articles *model.UserArticles
	err      error
}

type myRequestsMsg struct {
	seq      int
	tab      tab
	requests []model.TeamRequest
	err      error
}

// profileSavedMsg completes a profile create or update. Unlike fetches it
// carries no seq: the cache write must apply even if the user has already
// tabbed away.
type profileSavedMsg struct {
	profile *model.Profile
	created bool
	err     error
}

type requestCreatedMsg struct {
	request *model.TeamRequest
	err     error
}

type importDoneMsg struct {
	result *model.ImportResult
	err    error
}

// flashClearMsg expires a status-bar flash; the id keeps an old timer from
// clearing a newer flash.
type flashClearMsg struct {
	id int
}
