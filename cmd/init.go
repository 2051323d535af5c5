package cmd

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Adopt the existing repository as the first context",
	Long: `Moves the existing .git directory to .git-<name>, replaces .git with a
symlink to it and records <name> as the active context.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	m, err := bootstrapManager()
	if err != nil {
		return err
	}

	res, err := m.Init(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logSuccess("Initialized context %s (storage %s)", res.Context, res.StoragePath)
	return nil
}
