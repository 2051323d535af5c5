package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/git-context/internal/store"
)

var (
	promptLabelStyle = lipgloss.NewStyle().
				Bold(true)

	promptErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))

	promptDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// NameModel asks for the name of a new context.
type NameModel struct {
	input     textinput.Model
	name      string
	err       string
	cancelled bool
	done      bool
}

// NewNamePrompt creates a prompt that only accepts valid context names.
func NewNamePrompt() NameModel {
	ni := textinput.New()
	ni.Placeholder = "context-name"
	ni.CharLimit = 64
	ni.Width = 40
	ni.Focus()

	return NameModel{input: ni}
}

func (m NameModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m NameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return m, nil
			}
			if err := store.ValidateName(name); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.name = name
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m NameModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(promptLabelStyle.Render("New context name:"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.err != "" {
		b.WriteString(promptErrorStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(promptDimStyle.Render("Enter to create, Esc to cancel."))
	return b.String()
}

// Name returns the accepted name, or "" if the prompt was cancelled.
func (m NameModel) Name() string {
	if m.cancelled {
		return ""
	}
	return m.name
}

// PromptName runs the name prompt. It returns "" when the user cancels.
func PromptName() (string, error) {
	p := tea.NewProgram(NewNamePrompt())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}
	return finalModel.(NameModel).Name(), nil
}
