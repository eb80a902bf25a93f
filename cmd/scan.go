package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phux/urlscan/app"
	"github.com/phux/urlscan/internal/config"
	"github.com/phux/urlscan/internal/report"
)

var ErrMaliciousFound = errors.New("malicious URLs found")

var (
	urlFile         string
	expand          bool
	patternPrefix   string
	patternSuffix   string
	failOnMalicious bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [url...]",
	Short: "scan one or more URLs and print their verdicts",
	Long: `Scan one or more URLs and print their verdicts.

URLs are scanned one after another. With --expand, range patterns such as
https://example.com/page/{1-3} or https://{www,api}.example.com are expanded
into one URL per value.`,
	Example: `  urlscan scan https://example.com
  urlscan scan --urlFile urls.txt --format markdown
  urlscan scan --expand "https://example.com/item/{1-5}"`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&urlFile, "urlFile", "", "[optional] file with URLs: JSON {\"urls\": [...]} or one URL per line")
	scanCmd.Flags().BoolVar(&expand, "expand", false, "[optional] expand range patterns in URLs")
	scanCmd.Flags().StringVar(&patternPrefix, "patternPrefix", "{", "[optional] opening delimiter of range patterns")
	scanCmd.Flags().StringVar(&patternSuffix, "patternSuffix", "}", "[optional] closing delimiter of range patterns")
	scanCmd.Flags().BoolVar(&failOnMalicious, "failOnMalicious", false, "[optional] exit non-zero if any URL has a malicious detection")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := setupLogger(cfg)

	urls, err := collectTargets(args)
	if err != nil {
		return err
	}

	writer, err := report.New(cfg.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	store, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store, logger)

	// progress goes to stderr so stdout only carries the final report
	var render func(app.State)
	if cfg.Format == config.FormatText {
		render = stateRenderer(report.NewTextWriter(cmd.ErrOrStderr()), logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := newScanner(cfg, logger, store, render)
	defer scanner.Close()

	results, runErr := app.NewBatch(scanner, logger).Run(ctx, urls)
	if results == nil {
		return runErr
	}

	// partial results of an interrupted run are still worth printing
	if err := writer.WriteResults(results); err != nil {
		return fmt.Errorf("cannot write results: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	if failOnMalicious && len(results.Flagged()) > 0 {
		return fmt.Errorf("%w: %d", ErrMaliciousFound, len(results.Flagged()))
	}

	return nil
}

func collectTargets(args []string) ([]string, error) {
	targets := &app.Targets{URLs: append([]string{}, args...)}

	if urlFile != "" {
		fromFile, err := app.LoadTargetsFromFile(urlFile)
		if err != nil {
			return nil, err
		}
		targets.URLs = append(targets.URLs, fromFile.URLs...)
	}

	if !expand {
		return targets.URLs, nil
	}

	expander, err := app.NewExpander(app.PatternOptions{
		PatternPrefix: patternPrefix,
		PatternSuffix: patternSuffix,
	})
	if err != nil {
		return nil, err
	}

	return targets.Expand(expander)
}
