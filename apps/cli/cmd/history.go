package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/curlite/packages/history"
	"github.com/abdul-hamid-achik/curlite/packages/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalFlags) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded transfers",
		Long: `Show the most recent transfers recorded with --history, newest first.

Examples:
  curlite history
  curlite history --limit 50 -o json
  curlite history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, nil)
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryPath)
			if err != nil {
				return configError(fmt.Errorf("open history: %w", err))
			}
			defer store.Close()

			if clearAll {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d transfers\n", n)
				return nil
			}

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			formatter, err := output.New(cfg.Output, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
			if err != nil {
				return configError(err)
			}
			return formatter.FormatHistory(entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of transfers to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded transfers")
	return cmd
}
