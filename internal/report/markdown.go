package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/phux/urlscan/app"
)

// MarkdownWriter writes reports meant to be pasted into tickets or docs.
type MarkdownWriter struct {
	baseWriter
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

func (w *MarkdownWriter) WriteState(state app.State) error {
	// intermediate states carry nothing worth documenting
	if !state.HasResult() || state.Queued() {
		return nil
	}

	md := markdown.NewMarkdown(w.output)
	md.H2("Analysis " + state.AnalysisID)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + state.Input + "`"},
			{"Status", state.Analysis.Status()},
			{"Harmless", strconv.Itoa(state.Analysis.Data.Attributes.Stats.Harmless)},
			{"Malicious", strconv.Itoa(state.Analysis.Data.Attributes.Stats.Malicious)},
		},
	})
	md.PlainText("")

	return md.Build()
}

func (w *MarkdownWriter) WriteResults(results *app.Results) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("URL Scan Report")
	md.PlainText("")

	flagged := results.Flagged()
	if len(flagged) > 0 {
		md.Warningf("%d of %d URLs were flagged as malicious.", len(flagged), len(results.Verdicts))
	} else if len(results.Verdicts) > 0 {
		md.Tip("No URL was flagged as malicious.")
	}
	md.PlainText("")

	md.H2("Verdicts")
	md.PlainText("")
	md.Table(verdictTable(results.Verdicts))
	md.PlainText("")

	if len(results.Findings) > 0 {
		md.H2("Without Verdict")
		md.PlainText("")
		rows := make([][]string, 0, len(results.Findings))
		for _, finding := range results.Findings {
			rows = append(rows, []string{"`" + finding.URL + "`", finding.Error})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

func (w *MarkdownWriter) WriteHistory(verdicts []app.Verdict) error {
	md := markdown.NewMarkdown(w.output)
	md.H1("Scan History")
	md.PlainText("")

	if len(verdicts) == 0 {
		md.Note("No scans recorded yet.")

		return md.Build()
	}

	md.Table(verdictTable(verdicts))
	md.PlainText("")

	return md.Build()
}

func verdictTable(verdicts []app.Verdict) markdown.TableSet {
	rows := make([][]string, 0, len(verdicts))
	for _, verdict := range verdicts {
		rows = append(rows, []string{
			"`" + verdict.URL + "`",
			verdict.ScannedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(verdict.Stats.Harmless),
			strconv.Itoa(verdict.Stats.Malicious),
			strconv.Itoa(verdict.Stats.Suspicious),
			strconv.Itoa(verdict.Stats.Undetected),
		})
	}

	return markdown.TableSet{
		Header: []string{"URL", "Scanned", "Harmless", "Malicious", "Suspicious", "Undetected"},
		Rows:   rows,
	}
}
