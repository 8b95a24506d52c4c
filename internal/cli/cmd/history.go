package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"ytfetch/internal/config"
	"ytfetch/internal/history"
	"ytfetch/internal/util/format"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recent downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			cfg := config.Load()
			if cfg.HistoryPath == "" {
				return &ExitError{Code: ExitCLIError, Err: errors.New("history is disabled (no --history-db)")}
			}
			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of entries to show (0 for all)")
	return cmd
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No downloads yet.")
		return
	}
	for _, e := range entries {
		name := e.Title
		if name == "" {
			name = e.URL
		}
		fmt.Fprintf(w, "%s  %-9s %-6s %s\n", e.CreatedAt.Local().Format(time.DateTime), e.State, e.Mode, name)
		if e.OutputPath != "" {
			fmt.Fprintf(w, "    -> %s (%s)\n", e.OutputPath, format.HumanizeBytes(e.Bytes))
		}
		if e.Error != "" {
			fmt.Fprintf(w, "    !! %s\n", e.Error)
		}
	}
}
