package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactive context picker",
	Long: `Opens an interactive TUI for choosing the context to switch to.

Use arrow keys or j/k to navigate, / to filter, Enter to switch.

Actions:
  Enter  - Switch to selected context
  n      - Create a new context and switch to it
  q/Esc  - Quit

When stdout is not a terminal the contexts are listed instead.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), tui.SimplePicker(st.Contexts))
		return nil
	}

	logging.Debug("picker mode started", "contexts", len(st.Contexts))

	result, err := tui.RunPicker(st.Contexts)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action, "context", result.Context)

	switch result.Action {
	case tui.ActionSwitch:
		res, err := m.Switch(cmd.Context(), result.Context)
		if err != nil {
			return err
		}
		displaySwitch(res)

	case tui.ActionNew:
		name, err := tui.PromptName()
		if err != nil {
			return fmt.Errorf("prompt error: %w", err)
		}
		if name == "" {
			return nil
		}
		res, err := m.New(cmd.Context(), name)
		if err != nil {
			return err
		}
		logSuccess("Created context %s (storage %s)", res.Context, res.StoragePath)
		if res.Switch != nil {
			displaySwitch(res.Switch)
		}

	case tui.ActionQuit:
		// Just exit cleanly
	}

	return nil
}
