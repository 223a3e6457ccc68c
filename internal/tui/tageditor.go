package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// duplicatePolicy decides whether one label may appear twice in a tag
// collection. Majors are a set; required roles may repeat (a team can need
// two Backend people).
type duplicatePolicy int

const (
	rejectDuplicates duplicatePolicy = iota
	allowDuplicates
)

// tagEditor is an ordered free-text tag collection with a single-line input
// in front. Both the majors editor and the required-roles editor are this
// type; only the duplicate policy differs.
type tagEditor struct {
	input  textinput.Model
	tags   []string
	policy duplicatePolicy
}

func newTagEditor(placeholder string, policy duplicatePolicy) tagEditor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = 32
	ti.Placeholder = placeholder
	return tagEditor{input: ti, policy: policy}
}

// Add trims text and appends it. Empty text is always rejected; an exact
// duplicate is rejected only under rejectDuplicates. Reports whether the
// collection changed.
func (e *tagEditor) Add(text string) bool {
	tag := strings.TrimSpace(text)
	if tag == "" {
		return false
	}
	if e.policy == rejectDuplicates {
		for _, t := range e.tags {
			if t == tag {
				return false
			}
		}
	}
	e.tags = append(e.tags, tag)
	return true
}

// RemoveAt drops the i-th tag, keeping the order of the rest.
func (e *tagEditor) RemoveAt(i int) {
	if i < 0 || i >= len(e.tags) {
		return
	}
	e.tags = append(e.tags[:i], e.tags[i+1:]...)
}

// Tags returns the collection in insertion order. The copy keeps callers
// from aliasing the editor's backing array.
func (e *tagEditor) Tags() []string {
	out := make([]string, len(e.tags))
	copy(out, e.tags)
	return out
}

func (e *tagEditor) Len() int { return len(e.tags) }

// SetTags replaces the collection, applying the editor's own policy so a
// prefilled set obeys the same rules as typed input.
func (e *tagEditor) SetTags(tags []string) {
	e.tags = nil
	for _, t := range tags {
		e.Add(t)
	}
}

func (e *tagEditor) Reset() {
	e.tags = nil
	e.input.SetValue("")
}

func (e *tagEditor) Focus() tea.Cmd { return e.input.Focus() }
func (e *tagEditor) Blur()          { e.input.Blur() }
func (e *tagEditor) Focused() bool  { return e.input.Focused() }

// Update handles keys while the editor's input has focus: enter commits the
// typed tag, backspace on an empty input removes the newest tag. Everything
// else goes to the text input.
func (e *tagEditor) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if e.Add(e.input.Value()) {
			e.input.SetValue("")
		}
		return nil
	case "backspace":
		if strings.TrimSpace(e.input.Value()) == "" {
			e.RemoveAt(len(e.tags) - 1)
			return nil
		}
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

var tagChipStyle = lipgloss.NewStyle().
	Background(colorControlBg).
	Padding(0, 1)

// View renders the chips row above the input line.
func (e *tagEditor) View(width int) string {
	var b strings.Builder
	if len(e.tags) == 0 {
		b.WriteString(styleMuted().Render("(none yet)"))
	} else {
		chips := make([]string, len(e.tags))
		for i, t := range e.tags {
			chips[i] = tagChipStyle.Render(t)
		}
		b.WriteString(strings.Join(chips, " "))
	}
	b.WriteString("\n")
	b.WriteString(renderInputLine(width, e.input.View()))
	return b.String()
}
