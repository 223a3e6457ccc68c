package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"labmate-cli/internal/model"
)

// The async-fetch contract: every fetch completion carries the seq and tab
// captured at dispatch, and the update loop drops completions that no
// longer match. These tests drive that contract without a network by
// injecting the completion messages directly.

func TestSearchResultsAfterTabSwitchAreDropped(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabSearch
	_ = m.startSearch("nlp")
	staleSeq := m.fetchSeq

	// The user switches away before the response lands.
	_ = m.goTo(tabProfile)

	late := searchResultsMsg{seq: staleSeq, tab: tabSearch, results: []model.ProfileSummary{
		{ID: 1, UserID: 11, FirstName: "Grace", LastName: "Hopper"},
	}}
	next, _ := m.Update(late)
	m2 := next.(appModel)

	if m2.tab != tabProfile {
		t.Fatalf("expected profile tab to stay active; got %v", m2.tab)
	}
	if n := len(m2.searchList.Items()); n != 0 {
		t.Fatalf("expected stale results dropped; got %d items", n)
	}
}

func TestSupersededSearchKeepsOnlyTheNewestResults(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabSearch
	_ = m.startSearch("nlp")
	oldSeq := m.fetchSeq
	_ = m.startSearch("information retrieval")
	newSeq := m.fetchSeq

	// The first response arrives after the query was retyped.
	next, _ := m.Update(searchResultsMsg{seq: oldSeq, tab: tabSearch, results: []model.ProfileSummary{
		{ID: 1, UserID: 11, FirstName: "Old"},
	}})
	m2 := next.(appModel)
	if n := len(m2.searchList.Items()); n != 0 {
		t.Fatalf("expected superseded results dropped; got %d items", n)
	}
	if !m2.searchLoading {
		t.Fatalf("expected the newer search to still be loading")
	}

	next, _ = m2.Update(searchResultsMsg{seq: newSeq, tab: tabSearch, results: []model.ProfileSummary{
		{ID: 2, UserID: 12, FirstName: "Karen", LastName: "Jones"},
		{ID: 3, UserID: 13, FirstName: "Stephen", LastName: "Robertson"},
	}})
	m3 := next.(appModel)
	if n := len(m3.searchList.Items()); n != 2 {
		t.Fatalf("expected 2 current results; got %d", n)
	}
	if m3.searchLoading {
		t.Fatalf("expected loading cleared once the current response applied")
	}
}

func TestTabSwitchOrphansFetchEvenWithoutANewOne(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabHome
	_ = m.fetchFeed()
	staleSeq := m.fetchSeq

	// Search starts no fetch of its own; the seq bump alone must orphan
	// the feed request.
	_ = m.goTo(tabSearch)

	next, _ := m.Update(feedMsg{seq: staleSeq, tab: tabHome, articles: []model.Article{
		{ID: 1, Title: "Attention Is All You Need", Citations: 100000},
	}})
	m2 := next.(appModel)
	if n := len(m2.homeList.Items()); n != 0 {
		t.Fatalf("expected orphaned feed response dropped; got %d items", n)
	}
}

func TestFeedAppliesWhenCurrent(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabHome
	_ = m.fetchFeed()

	next, _ := m.Update(feedMsg{seq: m.fetchSeq, tab: tabHome, articles: []model.Article{
		{ID: 1, Title: "BM25 and Beyond", Citations: 4200},
		{ID: 2, Title: "Indexing by Latent Semantic Analysis", Citations: 9000},
	}})
	m2 := next.(appModel)
	if m2.homeLoading {
		t.Fatalf("expected loading cleared")
	}
	if m2.homeErr != "" {
		t.Fatalf("expected no error; got %q", m2.homeErr)
	}
	if n := len(m2.homeList.Items()); n != 2 {
		t.Fatalf("expected 2 feed items; got %d", n)
	}
}

func TestFeedErrorIsShownForTheCurrentFetchOnly(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabHome
	_ = m.fetchFeed()

	next, _ := m.Update(feedMsg{seq: m.fetchSeq, tab: tabHome, err: errors.New("connection refused")})
	m2 := next.(appModel)
	if m2.homeErr == "" {
		t.Fatalf("expected feed error surfaced")
	}
	if m2.homeLoading {
		t.Fatalf("expected loading cleared on error")
	}
}

func TestPersonFetchIgnoredAfterBackingOut(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabSearch
	_ = m.openPerson(42)

	// Backing out clears the detail pane without bumping the seq; the
	// nil check alone must drop the late response.
	next, _ := m.updateSearch(tea.KeyMsg{Type: tea.KeyEsc})
	m2 := next.(appModel)
	if m2.person != nil {
		t.Fatalf("expected esc to close the detail pane")
	}

	p := model.Profile{ID: 5, UserID: 42, FirstName: "Grace"}
	next, _ = m2.Update(personMsg{seq: m2.fetchSeq, tab: tabSearch, profile: &p})
	m3 := next.(appModel)
	if m3.person != nil {
		t.Fatalf("expected late person response dropped")
	}
}

func TestPersonDetailAppliesWhileOpen(t *testing.T) {
	t.Parallel()

	m := signedInUser(testApp())
	m.tab = tabSearch
	_ = m.openPerson(42)

	p := model.Profile{ID: 5, UserID: 42, FirstName: "Grace", LastName: "Hopper"}
	arts := model.UserArticles{Total: 3}
	next, _ := m.Update(personMsg{seq: m.fetchSeq, tab: tabSearch, profile: &p, articles: &arts})
	m2 := next.(appModel)

	if m2.person == nil || m2.person.loading {
		t.Fatalf("expected detail pane loaded")
	}
	if m2.person.profile == nil || m2.person.profile.UserID != 42 {
		t.Fatalf("expected profile for user 42; got %+v", m2.person.profile)
	}
	if m2.person.articles == nil || m2.person.articles.Total != 3 {
		t.Fatalf("expected articles attached to the detail pane")
	}
}
