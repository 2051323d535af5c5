package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Display the journal of context operations",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

var logJSON bool

func init() {
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Output events as JSON lines")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}

	events, err := m.Journal()
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events recorded")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, e := range events {
		if logJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		subject := e.Context
		if e.From != "" {
			subject = e.From + " -> " + e.Context
		}
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-15s %s (%s)\n", ts, e.Type, subject, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-15s %s\n", ts, e.Type, subject)
		}
	}

	return nil
}
