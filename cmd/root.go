package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/git-context/internal/app"
	"github.com/firefly-engineering/git-context/internal/config"
	"github.com/firefly-engineering/git-context/internal/logging"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "git-context",
	Short: "Switch one working tree between several git histories",
	Long: `git-context lets one directory host several independent git histories.

Each context is a separate repository in .git-<name>; .git is a symlink to
the active one. Files a context owns (local settings, secrets, notes) are
moved into its storage while it is inactive and brought back when it is
switched to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)

		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		app.Default.Settings = settings
		logging.Debug("settings loaded", "git", settings.GitBinary, "storage_prefix", settings.StoragePrefix, "lock_timeout", settings.LockTimeout)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default ~/.config/git-context/config.yaml)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)

// displayWarnings reports the non-fatal problems of an operation.
func displayWarnings(warnings []string) {
	for _, w := range warnings {
		logWarning("%s", w)
	}
}
