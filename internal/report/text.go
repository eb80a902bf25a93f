package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/phux/urlscan/app"
)

const progressWidth = 20

// TextWriter writes human-readable terminal output.
type TextWriter struct {
	baseWriter
}

func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// WriteState shows a progress bar while the analysis is queued and the
// harmless/malicious tally once an analysis has been received.
func (w *TextWriter) WriteState(state app.State) error {
	var b strings.Builder

	switch {
	case state.Queued():
		fmt.Fprintf(&b, "%s queued (poll %d)\n", progressBar(state.Polls), state.Polls)
	case state.AnalysisID != "" && !state.HasResult():
		fmt.Fprintf(&b, "Submitted, analysis id %s\n", state.AnalysisID)
	}

	if state.HasResult() {
		stats := state.Analysis.Data.Attributes.Stats
		fmt.Fprintf(&b, "Harmless: %d  Malicious: %d\n", stats.Harmless, stats.Malicious)
	}

	if b.Len() == 0 {
		return nil
	}

	_, err := io.WriteString(w.output, b.String())

	return err
}

func (w *TextWriter) WriteResults(results *app.Results) error {
	var b strings.Builder

	for _, verdict := range results.Verdicts {
		writeVerdictLine(&b, verdict)
	}

	if len(results.Findings) > 0 {
		b.WriteString("\nNo verdict:\n")
		for _, finding := range results.Findings {
			fmt.Fprintf(&b, "  %s\n    Error: %s\n", finding.URL, finding.Error)
		}
	}

	fmt.Fprintf(
		&b,
		"\nFinished - %d scanned, %d flagged, %d without verdict\n",
		len(results.Verdicts),
		len(results.Flagged()),
		len(results.Findings),
	)

	_, err := io.WriteString(w.output, b.String())

	return err
}

func (w *TextWriter) WriteHistory(verdicts []app.Verdict) error {
	if len(verdicts) == 0 {
		_, err := io.WriteString(w.output, "No scans recorded yet\n")

		return err
	}

	var b strings.Builder
	for _, verdict := range verdicts {
		fmt.Fprintf(&b, "%s  ", verdict.ScannedAt.Format("2006-01-02 15:04:05"))
		writeVerdictLine(&b, verdict)
	}

	_, err := io.WriteString(w.output, b.String())

	return err
}

func writeVerdictLine(b *strings.Builder, verdict app.Verdict) {
	fmt.Fprintf(
		b,
		"%s  Harmless: %d  Malicious: %d  Suspicious: %d\n",
		verdict.URL,
		verdict.Stats.Harmless,
		verdict.Stats.Malicious,
		verdict.Stats.Suspicious,
	)
}

// progressBar draws an indeterminate bar whose block moves with every poll.
func progressBar(polls int) string {
	const block = 4

	offset := polls % (progressWidth - block + 1)

	return "[" +
		strings.Repeat(" ", offset) +
		strings.Repeat("=", block) +
		strings.Repeat(" ", progressWidth-block-offset) +
		"]"
}
