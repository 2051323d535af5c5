package cmd

import (
	"github.com/spf13/cobra"
)

var keepCmd = &cobra.Command{
	Use:   "keep <path>",
	Short: "Make a file or directory private to the active context",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeep,
}

var unkeepCmd = &cobra.Command{
	Use:   "unkeep <path|pattern>",
	Short: "Stop the active context owning a path",
	Long: `Removes a path from the active context's owned files. The argument may
be a glob pattern (for example '**.env'), which removes every owned path it
matches. The files themselves are left where they are.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnkeep,
}

func init() {
	rootCmd.AddCommand(keepCmd)
	rootCmd.AddCommand(unkeepCmd)
}

func runKeep(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	res, err := m.Keep(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if res.AlreadyOwned {
		logInfo("%s is already owned by %s", res.Path, res.Context)
		return nil
	}
	logSuccess("%s is now owned by %s", res.Path, res.Context)
	return nil
}

func runUnkeep(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	res, err := m.Unkeep(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if len(res.Removed) == 0 {
		logInfo("%s is not owned by %s", args[0], res.Context)
		return nil
	}
	for _, p := range res.Removed {
		logSuccess("%s is no longer owned by %s", p, res.Context)
	}
	return nil
}
