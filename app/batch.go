package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoTargetsDefined = errors.New("no URL targets defined")
	ErrNoVerdict        = errors.New("analysis did not reach a verdict")
)

// Batch scans a list of URLs one after another with a single Scanner.
type Batch struct {
	scanner *Scanner
	logger  *slog.Logger
}

func NewBatch(scanner *Scanner, logger *slog.Logger) *Batch {
	return &Batch{
		scanner: scanner,
		logger:  logger,
	}
}

// Run returns early only when ctx is done; per-URL failures become findings.
func (b *Batch) Run(ctx context.Context, urls []string) (*Results, error) {
	if len(urls) == 0 {
		return nil, ErrNoTargetsDefined
	}

	results := NewResults()
	for i, rawURL := range urls {
		b.logger.Info("scanning", "url", rawURL, "position", i+1, "total", len(urls))

		if err := b.scanner.Submit(ctx, rawURL); err != nil {
			results.addFinding(rawURL, err)

			continue
		}

		state, err := b.scanner.Wait(ctx)
		if err != nil {
			return results, fmt.Errorf("scan of %s interrupted: %w", rawURL, err)
		}

		if !state.HasResult() || state.Queued() {
			results.addFinding(rawURL, ErrNoVerdict)

			continue
		}

		results.addVerdict(NewVerdict(rawURL, state.AnalysisID, state.Analysis))
	}

	b.logger.Info(
		"done",
		"verdicts", len(results.Verdicts),
		"findings", len(results.Findings),
		"total", len(urls),
	)

	return results, nil
}
