package app

import "fmt"

type Results struct {
	Verdicts []Verdict `json:"verdicts"`
	Findings []Finding `json:"findings"`
}

// Finding is a target that did not produce a verdict.
type Finding struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

func NewResults() *Results {
	return &Results{
		Verdicts: []Verdict{},
		Findings: []Finding{},
	}
}

func (r *Results) addVerdict(verdict Verdict) {
	r.Verdicts = append(r.Verdicts, verdict)
}

func (r *Results) addFinding(url string, err error) {
	r.Findings = append(r.Findings, Finding{URL: url, Error: fmt.Sprint(err)})
}

// Flagged returns the verdicts with at least one malicious detection.
func (r *Results) Flagged() []Verdict {
	flagged := []Verdict{}
	for _, verdict := range r.Verdicts {
		if verdict.Stats.Malicious > 0 {
			flagged = append(flagged, verdict)
		}
	}

	return flagged
}
