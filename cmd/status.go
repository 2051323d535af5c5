package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/lifecycle"
	"github.com/firefly-engineering/git-context/internal/transfer"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active context and its owned files",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var statusOutput string

var (
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	st, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch statusOutput {
	case "text", "":
		printStatus(out, st)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.ValidationError(fmt.Sprintf("unknown output format %q (want text, json or yaml)", statusOutput))
	}
}

func printStatus(w io.Writer, st *lifecycle.Status) {
	fmt.Fprintf(w, "Workspace: %s\n", st.Root)
	fmt.Fprintf(w, "Active: %s\n", activeStyle.Render(st.ActiveContext))
	fmt.Fprintf(w, ".git -> %s\n", st.LinkTarget)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Owned files:")
	if len(st.OwnedFiles) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
	}
	for _, f := range st.OwnedFiles {
		fmt.Fprintf(w, "  %s %s\n", presenceIcon(f.Presence), f.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Contexts:")
	for _, c := range st.Contexts {
		name := c.Name
		if c.Active {
			name = activeStyle.Render("* " + c.Name)
		} else {
			name = "  " + name
		}
		fmt.Fprintf(w, "  %s %s\n", name, dimStyle.Render(fmt.Sprintf("(%s, %d owned, %s)", c.StoragePath, c.Owned, formatHead(c))))
	}

	if st.Pending != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, problemStyle.Render(fmt.Sprintf("⚠ switch from %s to %s started %s never finished",
			st.Pending.From, st.Pending.To, st.Pending.Started.Local().Format("2006-01-02 15:04:05"))))
	}
	if len(st.Problems) > 0 {
		fmt.Fprintln(w)
		for _, p := range st.Problems {
			fmt.Fprintln(w, problemStyle.Render("⚠ "+p))
		}
		fmt.Fprintln(w, dimStyle.Render("Run 'git-context refresh' to repair."))
	}
}

func presenceIcon(p transfer.Presence) string {
	switch p {
	case transfer.Present:
		return "✓"
	case transfer.Stashed:
		return "⚠"
	default:
		return "✗"
	}
}
