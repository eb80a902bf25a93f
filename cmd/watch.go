package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phux/urlscan/app"
	"github.com/phux/urlscan/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "scan URLs typed interactively",
	Long: `Scan URLs typed interactively.

Every line read from stdin is submitted as a new URL and replaces the scan in
progress. Pressing Enter on an empty line fetches the current analysis again.
The session ends on EOF (Ctrl-D) or Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg)

	writer, err := report.New(cfg.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	store, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), "Analyze suspicious URLs to detect malware")
	fmt.Fprintln(cmd.ErrOrStderr(), "Enter a URL to scan, an empty line to refresh, Ctrl-D to quit.")

	scanner := newScanner(cfg, logger, store, stateRenderer(writer, logger))

	return app.NewSession(scanner, cmd.InOrStdin()).Run(ctx)
}
