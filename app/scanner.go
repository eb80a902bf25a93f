package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	valid "github.com/asaskevich/govalidator"
)

const DefaultPollInterval = 4 * time.Second

var ErrScannerClosed = errors.New("scanner is closed")

type analyzer interface {
	SubmitURL(context.Context, string) (*CanonizationResult, error)
	GetAnalysis(context.Context, string) (*AnalysisResult, error)
}

// Recorder receives every verdict once its analysis leaves the queued state.
type Recorder interface {
	Record(context.Context, Verdict) error
}

type Option func(*Scanner)

func WithInterval(interval time.Duration) Option {
	return func(s *Scanner) {
		s.interval = interval
	}
}

func WithTicker(newTicker TickerFunc) Option {
	return func(s *Scanner) {
		s.newTicker = newTicker
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(s *Scanner) {
		s.recorder = recorder
	}
}

// WithOnChange registers a callback invoked with a snapshot after every
// state change. It is called outside of the scanner's lock.
func WithOnChange(onChange func(State)) Option {
	return func(s *Scanner) {
		s.onChange = onChange
	}
}

// Scanner submits URLs and polls their analysis until it is no longer
// queued. At most one poll cycle, and so at most one ticker, is alive at a
// time. Request failures are logged and otherwise ignored.
type Scanner struct {
	client    analyzer
	interval  time.Duration
	newTicker TickerFunc
	logger    *slog.Logger
	recorder  Recorder
	onChange  func(State)

	// cycleMu serializes starting and stopping poll cycles.
	cycleMu sync.Mutex

	mu        sync.Mutex
	state     State
	submitted string
	recorded  bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewScanner(client analyzer, opts ...Option) *Scanner {
	s := &Scanner{
		client:    client,
		interval:  DefaultPollInterval,
		newTicker: NewTimeTicker,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Scanner) SetInput(input string) {
	s.mu.Lock()
	s.state.Input = input
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Submit cancels any running poll cycle and starts a new one for rawURL.
// Only local validation errors are returned; the cycle itself runs in the
// background and is bound to ctx.
func (s *Scanner) Submit(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		s.logger.Debug("ignoring empty submission")

		return ErrEmptyURL
	}

	if !valid.IsURL(rawURL) {
		err := fmt.Errorf("%q: %w", rawURL, ErrInvalidURL)
		s.logger.Warn("ignoring submission", "error", err)

		return err
	}

	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	if s.isClosed() {
		return ErrScannerClosed
	}

	s.stop()

	s.mu.Lock()
	s.state = State{Input: s.state.Input}
	s.submitted = rawURL
	s.recorded = false
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	s.start(ctx, func(cycleCtx context.Context) {
		s.canonize(cycleCtx, rawURL)
	})

	return nil
}

// Refresh re-fetches the analysis of the current submission. The running poll
// cycle is replaced by a new one, so polling continues only while the
// refreshed analysis is queued.
func (s *Scanner) Refresh(ctx context.Context) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	if s.isClosed() {
		return
	}

	s.mu.Lock()
	id := s.state.AnalysisID
	s.mu.Unlock()

	if id == "" {
		s.logger.Debug("nothing to refresh")

		return
	}

	s.stop()
	s.start(ctx, s.poll)
}

// Wait blocks until the current poll cycle has finished or ctx is done and
// returns the latest state.
func (s *Scanner) Wait(ctx context.Context) (State, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}

	return s.State(), nil
}

// Close stops the running poll cycle and its ticker. Later submissions are
// rejected with ErrScannerClosed.
func (s *Scanner) Close() {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.stop()
}

func (s *Scanner) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// start runs cycle in a new goroutine. Callers hold cycleMu.
func (s *Scanner) start(ctx context.Context, cycle func(context.Context)) {
	cycleCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		cycle(cycleCtx)
	}()
}

// stop cancels the running cycle and waits for it to release its ticker.
// Callers hold cycleMu.
func (s *Scanner) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (s *Scanner) canonize(ctx context.Context, rawURL string) {
	result, err := s.client.SubmitURL(ctx, rawURL)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("could not submit URL", "url", rawURL, "error", err)
		}

		return
	}

	s.mu.Lock()
	s.state.AnalysisID = result.Data.ID
	snapshot := s.state
	s.mu.Unlock()

	s.logger.Debug("URL submitted", "url", rawURL, "analysisId", result.Data.ID)
	s.notify(snapshot)

	s.poll(ctx)
}

// poll fetches the analysis once and then once per tick for as long as it
// stays queued.
func (s *Scanner) poll(ctx context.Context) {
	if !s.fetch(ctx) {
		return
	}

	ticker := s.newTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !s.fetch(ctx) {
				return
			}
		}
	}
}

// fetch requests the current analysis and reports whether it is still
// queued. A failed request leaves the state untouched.
func (s *Scanner) fetch(ctx context.Context) bool {
	s.mu.Lock()
	id := s.state.AnalysisID
	s.mu.Unlock()

	if id == "" {
		return false
	}

	result, err := s.client.GetAnalysis(ctx, id)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		s.logger.Error("could not fetch analysis", "analysisId", id, "error", err)

		return s.State().Queued()
	}

	s.mu.Lock()
	if s.state.AnalysisID != id {
		s.mu.Unlock()

		return false
	}
	prev := s.state.Analysis
	s.state.Analysis = result
	s.state.Polls++
	snapshot := s.state
	rawURL := s.submitted
	record := !result.IsQueued() && !s.recorded
	if record {
		s.recorded = true
	}
	s.mu.Unlock()

	s.logDiff(ctx, id, prev, result)
	s.notify(snapshot)

	if record {
		s.record(ctx, rawURL, id, result)
	}

	return result.IsQueued()
}

func (s *Scanner) logDiff(ctx context.Context, id string, prev, next *AnalysisResult) {
	if prev == nil || !s.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	if diff := diffAnalyses(prev.Raw, next.Raw); diff != "" {
		s.logger.Debug("analysis changed", "analysisId", id, "diff", diff)
	}
}

func (s *Scanner) record(ctx context.Context, rawURL, id string, result *AnalysisResult) {
	if s.recorder == nil {
		return
	}

	verdict := NewVerdict(rawURL, id, result)
	if err := s.recorder.Record(ctx, verdict); err != nil {
		s.logger.Error("could not record verdict", "url", rawURL, "error", err)
	}
}

func (s *Scanner) notify(state State) {
	if s.onChange != nil {
		s.onChange(state)
	}
}

func NewVerdict(rawURL, analysisID string, result *AnalysisResult) Verdict {
	scannedAt := time.Now().UTC()
	if result.Data.Attributes.Date > 0 {
		scannedAt = time.Unix(result.Data.Attributes.Date, 0).UTC()
	}

	return Verdict{
		URL:        rawURL,
		AnalysisID: analysisID,
		Status:     result.Status(),
		Stats:      result.Data.Attributes.Stats,
		ScannedAt:  scannedAt,
	}
}
