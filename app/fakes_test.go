package app_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phux/urlscan/app"
)

type analysisReply struct {
	result *app.AnalysisResult
	err    error
}

// fakeAnalyzer replays scripted replies; the last reply repeats.
type fakeAnalyzer struct {
	mu        sync.Mutex
	submitID  string
	submitErr error
	replies   []analysisReply
	submitted []string
	fetches   int
	fetched   chan string
}

func newFakeAnalyzer(replies ...analysisReply) *fakeAnalyzer {
	return &fakeAnalyzer{
		submitID: "u-1",
		replies:  replies,
		fetched:  make(chan string, 100),
	}
}

func (f *fakeAnalyzer) SubmitURL(_ context.Context, rawURL string) (*app.CanonizationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, rawURL)
	if f.submitErr != nil {
		return nil, f.submitErr
	}

	result := &app.CanonizationResult{}
	result.Data.ID = f.submitID

	return result, nil
}

func (f *fakeAnalyzer) GetAnalysis(_ context.Context, id string) (*app.AnalysisResult, error) {
	f.mu.Lock()
	reply := f.replies[min(f.fetches, len(f.replies)-1)]
	f.fetches++
	f.mu.Unlock()

	f.fetched <- id

	return reply.result, reply.err
}

func (f *fakeAnalyzer) Submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.submitted...)
}

func (f *fakeAnalyzer) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fetches
}

func queued() analysisReply {
	return analysisReply{result: analysis(app.StatusQueued, 0, 0)}
}

func completed(harmless, malicious int) analysisReply {
	return analysisReply{result: analysis("completed", harmless, malicious)}
}

func failed(err error) analysisReply {
	return analysisReply{err: err}
}

func analysis(status string, harmless, malicious int) *app.AnalysisResult {
	result := &app.AnalysisResult{}
	result.Data.ID = "u-1"
	result.Data.Attributes.Status = status
	result.Data.Attributes.Stats = app.Stats{Harmless: harmless, Malicious: malicious}
	result.Raw = []byte(fmt.Sprintf(
		`{"data":{"attributes":{"status":%q,"stats":{"harmless":%d,"malicious":%d}}}}`,
		status, harmless, malicious,
	))

	return result
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.c
}

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *fakeTicker) Stopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

type tickerSource struct {
	created chan *fakeTicker
}

func newTickerSource() *tickerSource {
	return &tickerSource{created: make(chan *fakeTicker, 10)}
}

func (s *tickerSource) New(time.Duration) app.Ticker {
	ticker := &fakeTicker{
		c:       make(chan time.Time),
		stopped: make(chan struct{}),
	}
	s.created <- ticker

	return ticker
}

type fakeRecorder struct {
	mu       sync.Mutex
	verdicts []app.Verdict
}

func (r *fakeRecorder) Record(_ context.Context, verdict app.Verdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.verdicts = append(r.verdicts, verdict)

	return nil
}

func (r *fakeRecorder) Verdicts() []app.Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]app.Verdict{}, r.verdicts...)
}
