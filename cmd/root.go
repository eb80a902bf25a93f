package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/phux/urlscan/app"
	"github.com/phux/urlscan/internal/config"
	"github.com/phux/urlscan/internal/history"
	securelog "github.com/phux/urlscan/internal/log"
	"github.com/phux/urlscan/internal/report"
)

var (
	configFile   string
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	rateLimit    float64
	timeout      time.Duration
	headerFile   string
	outputFormat string
	logFormat    string
	historyDir   string
	noHistory    bool
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "urlscan",
	Short: "scan URLs for malware with the VirusTotal API",
	Long: `Analyze suspicious URLs to detect malware.

urlscan submits URLs to the VirusTotal v3 API, polls the analysis while it
is queued and prints how many engines rated the URL harmless or malicious.
The API key is read from VT_API_KEY, a .env file, the config file or --apiKey.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "[optional] config file (default: $XDG_CONFIG_HOME/urlscan/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "apiKey", "", "[optional] API key, overrides "+config.APIKeyEnv)
	rootCmd.PersistentFlags().StringVar(&baseURL, "baseURL", config.DefaultBaseURL, "[optional] API base URL")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "interval", config.DefaultPollInterval, "[optional] poll interval while an analysis is queued")
	rootCmd.PersistentFlags().Float64Var(&rateLimit, "rateLimit", config.DefaultRateLimit, "[optional] rate limit of API requests / minute, 0 for no limit")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "[optional] timeout of a single API request")
	rootCmd.PersistentFlags().StringVar(&headerFile, "headerFile", "", "[optional] headerFile: provide (additional) header key-value pairs via a JSON object (string: string). Applied to every API request")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", config.DefaultFormat, "[optional] output format: text, json or markdown")
	rootCmd.PersistentFlags().StringVar(&logFormat, "logFormat", config.DefaultLogFormat, "[optional] log format on stderr: text or json")
	rootCmd.PersistentFlags().StringVar(&historyDir, "historyDir", "", "[optional] directory of the scan history database (default: $XDG_DATA_HOME/urlscan)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "noHistory", false, "[optional] do not record verdicts in the scan history")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "[optional] enable debug logging")

	rootCmd.AddCommand(scanCmd, watchCmd, historyCmd)
}

// loadConfig merges the config file, .env, environment and every flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, ".env")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("apiKey") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("baseURL") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("interval") {
		cfg.PollInterval = pollInterval
	}
	if flags.Changed("rateLimit") {
		cfg.RateLimit = rateLimit
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("headerFile") {
		headers, err := app.LoadHeadersFromFile(headerFile)
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for key, value := range headers {
			cfg.Headers[key] = value
		}
	}
	if flags.Changed("format") {
		cfg.Format = outputFormat
	}
	if flags.Changed("logFormat") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("historyDir") {
		cfg.HistoryDir = historyDir
	}
	if flags.Changed("noHistory") {
		cfg.NoHistory = noHistory
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}

	return cfg, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	logger := securelog.New(os.Stderr, cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	return logger
}

// openHistory returns nil when history is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*history.Store, error) {
	if cfg.NoHistory {
		return nil, nil
	}

	store, err := history.Open(cfg.HistoryDir)
	if err != nil {
		return nil, fmt.Errorf("cannot open scan history: %w", err)
	}
	logger.Debug("recording verdicts", "database", store.Path())

	return store, nil
}

func newScanner(cfg *config.Config, logger *slog.Logger, store *history.Store, render func(app.State)) *app.Scanner {
	client := app.NewClient(cfg.BaseURL, cfg.APIKey, cfg.RequestsPerSecond(), cfg.Timeout)
	client.Headers = cfg.Headers

	opts := []app.Option{
		app.WithInterval(cfg.PollInterval),
		app.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, app.WithRecorder(store))
	}
	if render != nil {
		opts = append(opts, app.WithOnChange(render))
	}

	return app.NewScanner(client, opts...)
}

// stateRenderer serializes WriteState calls, which arrive from the poll
// goroutine as well as from the input loop.
func stateRenderer(w report.Writer, logger *slog.Logger) func(app.State) {
	var mu sync.Mutex

	return func(state app.State) {
		mu.Lock()
		defer mu.Unlock()

		if err := w.WriteState(state); err != nil {
			logger.Error("could not render state", "error", err)
		}
	}
}

func closeStore(store *history.Store, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Error("could not close scan history", "error", err)
	}
}
