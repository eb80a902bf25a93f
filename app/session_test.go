package app_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/phux/urlscan/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Run_SubmitsEachLine(t *testing.T) {
	t.Parallel()
	analyzer := newFakeAnalyzer(completed(5, 0))
	var last app.State
	scanner := newTestScanner(analyzer, newTickerSource(), app.WithOnChange(func(state app.State) {
		last = state
	}))

	err := app.NewSession(scanner, strings.NewReader("https://example.com\n")).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, analyzer.Submitted())
	assert.Equal(t, 1, analyzer.Fetches())
	assert.Equal(t, "https://example.com", last.Input)
	assert.Equal(t, 5, last.Analysis.Data.Attributes.Stats.Harmless)
	assert.ErrorIs(t, scanner.Submit(context.Background(), "https://example.org"), app.ErrScannerClosed)
}

func TestSession_Run_IgnoresEmptyAndInvalidLines(t *testing.T) {
	t.Parallel()
	analyzer := newFakeAnalyzer(completed(5, 0))
	scanner := newTestScanner(analyzer, newTickerSource())

	err := app.NewSession(scanner, strings.NewReader("\n   \nnot a url\n")).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, analyzer.Submitted())
	assert.Equal(t, 0, analyzer.Fetches())
}

func TestSession_Run_CancelReleasesTickerAndInput(t *testing.T) {
	t.Parallel()
	analyzer := newFakeAnalyzer(queued())
	tickers := newTickerSource()
	scanner := newTestScanner(analyzer, tickers)
	input, output := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan error, 1)
	go func() {
		finished <- app.NewSession(scanner, input).Run(ctx)
	}()

	_, err := output.Write([]byte("https://example.com\n"))
	require.NoError(t, err)
	ticker := waitTicker(t, tickers)

	cancel()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		require.FailNow(t, "session did not stop")
	}
	assert.True(t, ticker.Stopped())

	// the input was closed to unblock the pending read
	_, err = output.Write([]byte("https://example.org\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("terminal gone")
}

func TestSession_Run_ReadError(t *testing.T) {
	t.Parallel()
	scanner := newTestScanner(newFakeAnalyzer(completed(1, 0)), newTickerSource())

	err := app.NewSession(scanner, failingReader{}).Run(context.Background())

	assert.EqualError(t, err, "terminal gone")
}

// stuckReader blocks every Read until released, like a terminal that never
// delivers another line. It is not an io.Closer.
type stuckReader struct {
	release chan struct{}
}

func (r stuckReader) Read([]byte) (int, error) {
	<-r.release

	return 0, io.EOF
}

func TestSession_Run_CancelDoesNotWaitForBlockedRead(t *testing.T) {
	t.Parallel()
	input := stuckReader{release: make(chan struct{})}
	t.Cleanup(func() { close(input.release) })
	scanner := newTestScanner(newFakeAnalyzer(completed(1, 0)), newTickerSource())
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan error, 1)
	go func() {
		finished <- app.NewSession(scanner, input).Run(ctx)
	}()

	cancel()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		require.FailNow(t, "session did not stop while a read was pending")
	}
	assert.ErrorIs(t, scanner.Submit(context.Background(), "https://example.com"), app.ErrScannerClosed)
}
