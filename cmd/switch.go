package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/git-context/internal/lifecycle"
)

var switchCmd = &cobra.Command{
	Use:     "switch <name>",
	Aliases: []string{"sw"},
	Short:   "Make another context active",
	Long: `Stashes the files owned by the current context, points .git at the
target context and restores the files the target owns.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	res, err := m.Switch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	displaySwitch(res)
	return nil
}

func displaySwitch(r *lifecycle.SwitchResult) {
	if r.AlreadyActive {
		logInfo("Already on context %s", r.To)
		return
	}

	logSuccess("Switched from %s to %s", r.From, r.To)
	if len(r.Stashed) > 0 {
		logInfo("Stashed %d file(s) of %s", len(r.Stashed), r.From)
	}
	if len(r.Restored) > 0 {
		logInfo("Restored %d file(s) of %s", len(r.Restored), r.To)
	}
	displayWarnings(r.Warnings)
}
