package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"labmate-cli/internal/model"
)

// Upload tab (admin only): pick a .csv or .xlsx roster and bulk-import it.

func uploadPickerHeight(screenH int) int {
	// Leave room for the tab chrome, the hint line and the result block.
	h := screenH - 12
	if h < 8 {
		h = 8
	}
	if h > 18 {
		h = 18
	}
	return h
}

func newUploadPicker(height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Height = uploadPickerHeight(height)
	fp.Cursor = "›"
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("h", "up"),
	)

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.DisabledFile = styleMuted()
	fp.Styles.DisabledSelected = styleMuted()
	fp.Styles.Permission = styleMuted()
	fp.Styles.FileSize = styleMuted().Width(fp.Styles.FileSize.GetWidth()).Align(lipgloss.Right)

	startDir := "."
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		startDir = home
	}
	fp.CurrentDirectory = startDir
	return fp
}

func (m *appModel) resetUploadTab() tea.Cmd {
	m.picker = newUploadPicker(m.height)
	m.importing = false
	m.importPath = ""
	m.importRes = nil
	m.importErr = ""
	return m.picker.Init()
}

func (m *appModel) startImport(path string) tea.Cmd {
	m.importing = true
	m.importPath = path
	m.importRes = nil
	m.importErr = ""
	client := m.client

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importDoneMsg{err: err}
		}
		defer f.Close()
		res, err := client.ImportFile(context.Background(), filepath.Base(path), f)
		return importDoneMsg{result: res, err: err}
	}
}

func (m appModel) applyImportDone(msg importDoneMsg) (tea.Model, tea.Cmd) {
	m.importing = false
	if m.tab != tabUpload {
		// The user moved on; summarize in the status line instead.
		if msg.err != nil {
			return m.setFlash("Import failed: " + errorMessage(msg.err))
		}
		return m.setFlash(importSummary(msg.result))
	}
	if msg.err != nil {
		m.importErr = errorMessage(msg.err)
		return m, nil
	}
	m.importRes = msg.result
	return m, nil
}

func (m appModel) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.importing {
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		return m, nil
	}
	// After a result, "u" brings the picker back for the next file.
	if m.importRes != nil || m.importErr != "" {
		if msg.String() == "u" {
			cmd := m.resetUploadTab()
			return m, cmd
		}
		if mm, cmd, ok := m.handleGlobalKey(msg); ok {
			return mm, cmd
		}
		return m, nil
	}
	if mm, cmd, ok := m.handleGlobalKey(msg); ok {
		return mm, cmd
	}
	return m.updatePicker(msg)
}

// updatePicker feeds one message to the file picker and reacts to a pick.
// Non-key messages (directory reads) are routed here as well.
func (m appModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		importCmd := m.startImport(path)
		return m, tea.Batch(cmd, importCmd)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.importErr = filepath.Base(path) + " is not a .csv or .xlsx file"
		return m, cmd
	}
	return m, cmd
}

func importSummary(res *model.ImportResult) string {
	switch {
	case res == nil:
		return "Import finished."
	case res.Status == "skipped" && res.Message != "":
		return "Import skipped: " + res.Message
	case res.Status == "skipped":
		return "Import skipped."
	}
	return fmt.Sprintf("Processed %d users, upserted %d profiles.", res.UsersProcessed, res.ProfilesUpserted)
}

func (m appModel) viewUpload(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Bulk import"))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("Pick a .csv or .xlsx user roster to import."))
	b.WriteString("\n\n")

	switch {
	case m.importing:
		b.WriteString(styleMuted().Render("importing " + filepath.Base(m.importPath) + "..."))
	case m.importErr != "":
		b.WriteString(styleError().Render(m.importErr))
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render("u: pick another file"))
	case m.importRes != nil:
		line := importSummary(m.importRes)
		if m.importRes.Status == "skipped" {
			b.WriteString(styleMuted().Render(ansiTruncate(line, width)))
		} else {
			b.WriteString(styleSuccess().Render(ansiTruncate(line, width)))
		}
		b.WriteString("\n\n")
		b.WriteString(styleMuted().Render("u: pick another file"))
	default:
		b.WriteString(m.picker.View())
	}
	return b.String()
}
