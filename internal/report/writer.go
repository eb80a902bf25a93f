package report

import (
	"fmt"
	"io"

	"github.com/phux/urlscan/app"
	"github.com/phux/urlscan/internal/config"
)

// Writer renders urlscan output. WriteState is called on every scanner
// state change, the other methods once per command.
type Writer interface {
	WriteState(state app.State) error
	WriteResults(results *app.Results) error
	WriteHistory(verdicts []app.Verdict) error
}

// New returns the Writer for one of the config.Format* names.
func New(format string, output io.Writer) (Writer, error) {
	switch format {
	case config.FormatText, "":
		return NewTextWriter(output), nil
	case config.FormatJSON:
		return NewJSONWriter(output), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
