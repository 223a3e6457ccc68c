package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labmate-cli/internal/api"
	"labmate-cli/internal/session"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// authForm is the full-screen entry gate: the only view reachable without a
// resolved session. Tab order is email then password; the mode toggle
// switches the same two fields between sign-in and account creation.
type authForm struct {
	mode     authMode
	email    textinput.Model
	password textinput.Model
	focus    int

	invalidEmail    bool
	invalidPassword bool
	errMsg          string
	busy            bool
}

func newAuthForm() authForm {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@university.edu"
	email.CharLimit = 128
	email.Width = 38

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 38
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return authForm{mode: modeLogin, email: email, password: password}
}

func (f *authForm) setFocus(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

func (f *authForm) reset(errMsg string) tea.Cmd {
	f.password.SetValue("")
	f.invalidEmail = false
	f.invalidPassword = false
	f.errMsg = errMsg
	f.busy = false
	return f.setFocus(0)
}

func (m appModel) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.auth.busy {
		// One submission at a time.
		return m, nil
	}

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		// Two fields, so forward and backward land on the same place.
		cmd := m.auth.setFocus((m.auth.focus + 1) % 2)
		return m, cmd
	case "ctrl+t":
		if m.auth.mode == modeLogin {
			m.auth.mode = modeRegister
		} else {
			m.auth.mode = modeLogin
		}
		m.auth.errMsg = ""
		m.auth.invalidEmail = false
		m.auth.invalidPassword = false
		return m, nil
	case "esc":
		m.auth.busy = true
		return m, m.enterGuestCmd()
	case "enter":
		if m.auth.focus == 0 {
			cmd := m.auth.setFocus(1)
			return m, cmd
		}
		return m.submitAuth()
	}

	var cmd tea.Cmd
	if m.auth.focus == 0 {
		m.auth.email, cmd = m.auth.email.Update(msg)
	} else {
		m.auth.password, cmd = m.auth.password.Update(msg)
	}
	return m, cmd
}

// submitAuth validates the two fields client-side before anything goes out:
// an empty field just turns red, no request is made.
func (m appModel) submitAuth() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.auth.email.Value())
	password := m.auth.password.Value()

	m.auth.invalidEmail = email == ""
	m.auth.invalidPassword = password == ""
	if m.auth.invalidEmail || m.auth.invalidPassword {
		m.auth.errMsg = "email and password are required"
		return m, nil
	}
	m.auth.errMsg = ""
	m.auth.busy = true
	return m, m.authCmd(m.auth.mode, email, password)
}

// authCmd runs the whole exchange off the update loop: optional register,
// then login, then persisting the pair, then a fresh bootstrap.
func (m appModel) authCmd(mode authMode, email, password string) tea.Cmd {
	client, store := m.client, m.creds
	return func() tea.Msg {
		ctx := context.Background()
		if mode == modeRegister {
			if _, err := client.Register(ctx, email, password); err != nil {
				return authDoneMsg{err: err}
			}
		}
		tok, err := client.Login(ctx, email, password)
		if err != nil {
			return authDoneMsg{err: err}
		}
		if err := session.SaveLogin(ctx, store, tok); err != nil {
			return authDoneMsg{err: err}
		}
		res, err := session.Bootstrap(ctx, client, store)
		return authDoneMsg{res: res, err: err}
	}
}

func (m appModel) enterGuestCmd() tea.Cmd {
	client, store := m.client, m.creds
	return func() tea.Msg {
		ctx := context.Background()
		if err := session.EnterGuest(ctx, store); err != nil {
			return authDoneMsg{err: err}
		}
		res, err := session.Bootstrap(ctx, client, store)
		return authDoneMsg{res: res, err: err}
	}
}

// applyAuthResult folds an authDoneMsg back into the form or, on success,
// swaps to the dashboard.
func (m appModel) applyAuthResult(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var cmd tea.Cmd
		switch {
		case errors.Is(msg.err, api.ErrEmailTaken):
			cmd = m.auth.reset("that email is already registered, try signing in")
			m.auth.invalidEmail = true
		case errors.Is(msg.err, api.ErrUnauthenticated):
			cmd = m.auth.reset("invalid email or password")
		default:
			cmd = m.auth.reset(errorMessage(msg.err))
		}
		return m, cmd
	}
	m.applySession(msg.res)
	cmd := m.goTo(m.initialTab())
	return m, cmd
}

func authFieldLabel(label string, invalid bool) string {
	if invalid {
		return styleError().Render(label)
	}
	return lipgloss.NewStyle().Foreground(colorChromeMutedFg).Render(label)
}

func (m appModel) viewAuth() string {
	f := m.auth
	title := "LabMate " + glyphDot() + " sign in"
	action := "sign in"
	toggleHint := "ctrl+t: create an account"
	if f.mode == modeRegister {
		title = "LabMate " + glyphDot() + " create an account"
		action = "register"
		toggleHint = "ctrl+t: sign in instead"
	}

	bodyW := 44
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(title),
		"",
		authFieldLabel("Email", f.invalidEmail),
		renderInputLine(bodyW, f.email.View()),
		"",
		authFieldLabel("Password", f.invalidPassword),
		renderInputLine(bodyW, f.password.View()),
	}
	if f.busy {
		lines = append(lines, "", styleMuted().Render(action+"..."))
	} else if strings.TrimSpace(f.errMsg) != "" {
		lines = append(lines, "", styleError().Render(f.errMsg))
	}
	lines = append(lines, "",
		styleMuted().Render("enter: "+action+"  tab: next field"),
		styleMuted().Render(toggleHint+"  esc: browse as guest  ctrl+c: quit"),
	)

	box := lipgloss.NewStyle().
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorChromeMutedFg).
		Render(strings.Join(lines, "\n"))

	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
