package cmd

import (
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Repair .git and owned files from the contexts file",
	Long: `Points .git at the active context's storage, moves files of inactive
contexts out of the working tree and restores the active context's files
from its storage. Use it after an interrupted switch.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	res, err := m.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	if !res.Relinked && len(res.Stashed) == 0 && len(res.Restored) == 0 && len(res.Warnings) == 0 {
		logSuccess("Workspace is consistent (active context %s)", res.Context)
		return nil
	}

	if res.Relinked {
		logInfo("Pointed .git at context %s", res.Context)
	}
	for _, p := range res.Stashed {
		logInfo("Stashed %s", p)
	}
	for _, p := range res.Restored {
		logInfo("Restored %s", p)
	}
	displayWarnings(res.Warnings)
	logSuccess("Refreshed context %s", res.Context)
	return nil
}
