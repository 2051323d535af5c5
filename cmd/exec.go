package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/git-context/internal/logging"
)

var execCmd = &cobra.Command{
	Use:   "exec <name> [--] <command>...",
	Short: "Run a command against a context without switching to it",
	Long: `Runs a command with GIT_DIR set to the context's storage and
GIT_WORK_TREE set to the workspace root. The command's exit status is
returned unchanged.

  git-context exec personal git log --oneline
  git-context exec personal -- git status
  git-context exec personal "git commit -m 'notes'"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	// Everything after the context name belongs to the command.
	execCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	name := args[0]
	command := args[1:]
	if len(command) > 0 && command[0] == "--" {
		command = command[1:]
	}

	m, err := manager()
	if err != nil {
		return err
	}

	logging.Debug("exec", "context", name, "args", command)
	return m.Exec(cmd.Context(), name, command)
}
