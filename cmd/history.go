package cmd

import (
	"github.com/spf13/cobra"

	"github.com/phux/urlscan/internal/history"
	"github.com/phux/urlscan/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list recorded verdicts, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "[optional] number of verdicts to list, 0 for all")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	writer, err := report.New(cfg.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.HistoryDir)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	verdicts, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	return writer.WriteHistory(verdicts)
}
