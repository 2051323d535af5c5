package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/git-context/internal/lifecycle"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tSTORAGE\tFILES\tHEAD")
	fmt.Fprintln(w, "\t----\t-------\t-----\t----")

	for _, c := range st.Contexts {
		marker := ""
		if c.Active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			marker, c.Name, c.StoragePath, c.Owned, formatHead(c))
	}

	return w.Flush()
}

func formatHead(c lifecycle.ContextInfo) string {
	switch {
	case !c.StorageExists:
		return "⚠ storage missing"
	case c.Head == "":
		return "?"
	default:
		return c.Head
	}
}
