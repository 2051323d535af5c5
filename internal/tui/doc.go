// Package tui provides terminal user interface components for git-context.
//
// This package uses the Bubble Tea framework for the interactive context
// picker behind 'git-context pick'.
//
// # Context Picker
//
//	result, err := tui.RunPicker(status.Contexts)
//	switch result.Action {
//	case tui.ActionSwitch:
//	    // Switch to result.Context
//	case tui.ActionNew:
//	    name, err := tui.PromptName()
//	    // Create the context unless name is ""
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// SimplePicker renders the same list without a terminal, for use when
// stdout is not a TTY.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
