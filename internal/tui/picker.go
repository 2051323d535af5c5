package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firefly-engineering/git-context/internal/lifecycle"
)

// Action represents the action to take after picker selection
type Action int

const (
	ActionNone Action = iota
	ActionSwitch
	ActionNew
	ActionQuit
)

// PickerResult holds the result of the picker
type PickerResult struct {
	Action  Action
	Context string
}

// contextItem implements list.Item for context display
type contextItem struct {
	info lifecycle.ContextInfo
}

func (i contextItem) Title() string {
	if i.info.Active {
		return i.info.Name + " (active)"
	}
	return i.info.Name
}

func (i contextItem) Description() string {
	icon := "○"
	switch {
	case !i.info.StorageExists:
		icon = "⚠"
	case i.info.Active:
		icon = "●"
	}

	head := i.info.Head
	if head == "" {
		head = "unknown HEAD"
	}

	return fmt.Sprintf("%s %s | %s | %s",
		icon,
		i.info.StoragePath,
		head,
		pluralFiles(i.info.Owned),
	)
}

func (i contextItem) FilterValue() string {
	return i.info.Name
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 owned file"
	}
	return fmt.Sprintf("%d owned files", n)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// Model is the bubbletea model for the context picker
type Model struct {
	list     list.Model
	result   PickerResult
	quitting bool
	width    int
	height   int
}

// NewPicker creates a new context picker with the cursor on the active
// context.
func NewPicker(contexts []lifecycle.ContextInfo) Model {
	items := make([]list.Item, len(contexts))
	selected := 0
	for i, c := range contexts {
		items[i] = contextItem{info: c}
		if c.Active {
			selected = i
		}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	l := list.New(items, delegate, 80, 20)
	l.Title = "git-context - Select Context"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Select(selected)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		// Don't handle keys if filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(contextItem); ok {
				m.result = PickerResult{
					Action:  ActionSwitch,
					Context: item.info.Name,
				}
				m.quitting = true
				return m, tea.Quit
			}

		case "n":
			m.result = PickerResult{Action: ActionNew}
			m.quitting = true
			return m, tea.Quit

		case "q", "esc":
			m.result = PickerResult{Action: ActionQuit}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("[enter] Switch  [n] New  [/] Filter  [q] Quit")

	return m.list.View() + "\n" + help
}

// Result returns the picker result
func (m Model) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive context picker
func RunPicker(contexts []lifecycle.ContextInfo) (PickerResult, error) {
	if len(contexts) == 0 {
		return PickerResult{Action: ActionNew}, nil
	}

	m := NewPicker(contexts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}

	return finalModel.(Model).Result(), nil
}

// SimplePicker is a non-interactive picker that just lists contexts
func SimplePicker(contexts []lifecycle.ContextInfo) string {
	var sb strings.Builder

	sb.WriteString("git-context - Contexts\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	if len(contexts) == 0 {
		sb.WriteString("No contexts found.\n")
		sb.WriteString("Adopt the current repository with: git-context init <name>\n")
		return sb.String()
	}

	for i, c := range contexts {
		marker := " "
		if c.Active {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n", i+1, marker, c.Name, c.StoragePath))
		sb.WriteString(fmt.Sprintf("   %s | %s\n\n", c.Head, pluralFiles(c.Owned)))
	}

	return sb.String()
}
