package cmd

import (
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty context and switch to it",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	m, err := bootstrapManager()
	if err != nil {
		return err
	}

	res, err := m.New(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	logSuccess("Created context %s (storage %s)", res.Context, res.StoragePath)
	if res.Switch != nil {
		displaySwitch(res.Switch)
	}
	return nil
}
