package app

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
)

var errInputClosed = errors.New("input closed")

// Session feeds lines read from input into a Scanner. A non-empty line is a
// new submission, an empty line refreshes the current analysis.
type Session struct {
	scanner *Scanner
	input   io.Reader
}

func NewSession(scanner *Scanner, input io.Reader) *Session {
	return &Session{
		scanner: scanner,
		input:   input,
	}
}

// Run reads input until EOF or until ctx is done. On EOF the running poll
// cycle is allowed to finish. The scanner is closed before Run returns. If
// input is an io.Closer it is closed on cancellation.
//
// A read blocked in input does not delay Run: the reader goroutine is left
// behind and exits with its next read.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go s.read(ctx, lines, readErr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer s.scanner.Close()

		for {
			select {
			case <-gctx.Done():
				return nil
			case line := <-lines:
				s.handle(gctx, line)
			case err := <-readErr:
				if err != nil {
					return err
				}

				// let the last submission finish before tearing down
				_, _ = s.scanner.Wait(gctx)

				return errInputClosed
			}
		}
	})

	if closer, ok := s.input.(io.Closer); ok {
		g.Go(func() error {
			<-gctx.Done()
			_ = closer.Close()

			return nil
		})
	}

	err := g.Wait()
	if errors.Is(err, errInputClosed) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// read sends every line of input, then the read error or nil on EOF.
func (s *Session) read(ctx context.Context, lines chan<- string, readErr chan<- error) {
	reader := bufio.NewScanner(s.input)
	for reader.Scan() {
		select {
		case lines <- reader.Text():
		case <-ctx.Done():
			return
		}
	}

	readErr <- reader.Err()
}

func (s *Session) handle(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		s.scanner.Refresh(ctx)

		return
	}

	s.scanner.SetInput(line)
	// rejected submissions are already logged by the scanner
	_ = s.scanner.Submit(ctx, line)
}
