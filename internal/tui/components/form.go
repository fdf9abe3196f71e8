package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/storefront/internal/tui/styles"
)

const formLabelWidth = 18

// FormField describes one input of a Form
type FormField struct {
	Key         string // Stable name used by Value/SetValue
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

// FormResult is what a key press did to the form
type FormResult int

const (
	FormEditing FormResult = iota
	FormSubmitted
	FormCancelled
)

// Form is a vertical stack of labelled text inputs. Tab moves between
// fields; enter on the last field submits.
type Form struct {
	title  string
	fields []FormField
	inputs []textinput.Model
	focus  int
	err    string
	width  int
}

// NewForm creates a form with the first field focused
func NewForm(title string, fields []FormField) Form {
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.Prompt = ""
		ti.CharLimit = 200
		if f.CharLimit > 0 {
			ti.CharLimit = f.CharLimit
		}
		ti.Width = 36
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	form := Form{title: title, fields: fields, inputs: inputs, width: 60}
	form.setFocus(0)
	return form
}

// Title returns the form title
func (f Form) Title() string { return f.title }

// Focused returns the index of the focused field
func (f Form) Focused() int { return f.focus }

// SetWidth sets the rendered width
func (f *Form) SetWidth(width int) {
	f.width = width
	for i := range f.inputs {
		f.inputs[i].Width = max(width-formLabelWidth-8, 10)
	}
}

// SetError sets the inline error shown under the fields
func (f *Form) SetError(msg string) { f.err = msg }

// Error returns the inline error
func (f Form) Error() string { return f.err }

// Value returns the trimmed value of the field with key k
func (f Form) Value(k string) string {
	for i, field := range f.fields {
		if field.Key == k {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

// SetValue sets the value of the field with key k
func (f *Form) SetValue(k, v string) {
	for i, field := range f.fields {
		if field.Key == k {
			f.inputs[i].SetValue(v)
			return
		}
	}
}

// FocusKey focuses the field with key k, e.g. the one that failed validation
func (f *Form) FocusKey(k string) {
	for i, field := range f.fields {
		if strings.EqualFold(field.Key, k) {
			f.setFocus(i)
			return
		}
	}
}

// Reset clears every field and the error
func (f *Form) Reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.err = ""
	f.setFocus(0)
}

func (f *Form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// Init starts the cursor blink
func (f Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input events
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd, FormResult) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, ModalKeys.Escape):
			return f, nil, FormCancelled
		case key.Matches(keyMsg, ModalKeys.Enter):
			if f.focus == len(f.inputs)-1 {
				return f, nil, FormSubmitted
			}
			f.setFocus(f.focus + 1)
			return f, nil, FormEditing
		case key.Matches(keyMsg, ModalKeys.Next):
			f.setFocus(f.focus + 1)
			return f, nil, FormEditing
		case key.Matches(keyMsg, ModalKeys.Prev):
			f.setFocus(f.focus - 1)
			return f, nil, FormEditing
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, FormEditing
}

// View renders the form
func (f Form) View() string {
	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render(f.title))
	for i, field := range f.fields {
		labelStyle := styles.SubtitleStyle
		if i == f.focus {
			labelStyle = styles.AccentStyle
		}
		label := labelStyle.Render(styles.Pad(field.Label, formLabelWidth))
		rows = append(rows, label+f.inputs[i].View())
	}
	if f.err != "" {
		rows = append(rows, "", styles.ErrorStyle.Render(f.err))
	}
	rows = append(rows, "", styles.DimStyle.Render("tab next · enter submit · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.AccentSoft).
		Padding(1, 2).
		Width(f.width).
		Render(strings.Join(rows, "\n"))
}
