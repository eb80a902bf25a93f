package report

import (
	"encoding/json"
	"io"

	"github.com/phux/urlscan/app"
)

// JSONWriter writes one JSON document per call, for piping into other tools.
type JSONWriter struct {
	baseWriter
}

func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

type stateDocument struct {
	Input      string     `json:"input,omitempty"`
	AnalysisID string     `json:"analysisId,omitempty"`
	Status     string     `json:"status,omitempty"`
	Stats      *app.Stats `json:"stats,omitempty"`
	Polls      int        `json:"polls"`
}

func (w *JSONWriter) WriteState(state app.State) error {
	doc := stateDocument{
		Input:      state.Input,
		AnalysisID: state.AnalysisID,
		Status:     state.Analysis.Status(),
		Polls:      state.Polls,
	}
	if state.HasResult() {
		stats := state.Analysis.Data.Attributes.Stats
		doc.Stats = &stats
	}

	return json.NewEncoder(w.output).Encode(doc)
}

func (w *JSONWriter) WriteResults(results *app.Results) error {
	return w.writeIndented(results)
}

func (w *JSONWriter) WriteHistory(verdicts []app.Verdict) error {
	if verdicts == nil {
		verdicts = []app.Verdict{}
	}

	return w.writeIndented(verdicts)
}

func (w *JSONWriter) writeIndented(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = w.output.Write(append(encoded, '\n'))

	return err
}
