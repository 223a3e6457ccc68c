package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"labmate-cli/internal/api"
	"labmate-cli/internal/config"
	"labmate-cli/internal/creds"
)

// Run starts the dashboard. The client's unauthenticated hook is wired to
// the program's mailbox here: a dead session anywhere in the API surface
// lands in the update loop as an ordinary message.
func Run(cfg *config.Config, client *api.Client, store *creds.Store) error {
	applyColorProfilePreference()
	applyThemePreference(cfg.Theme)
	applyGlyphPreference()

	m := newAppModel(cfg, client, store)
	p := tea.NewProgram(m, tea.WithAltScreen())

	client.Logf = debugLogf
	client.OnUnauthenticated = func() {
		// Send is safe from the transport goroutine.
		p.Send(sessionExpiredMsg{})
	}

	_, err := p.Run()
	return err
}
