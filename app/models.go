package app

import "time"

const StatusQueued = "queued"

// CanonizationResult is the response of the URL submission endpoint.
type CanonizationResult struct {
	Data struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"data"`
}

type Stats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Timeout    int `json:"timeout"`
}

type AnalysisAttributes struct {
	Status string `json:"status"`
	Date   int64  `json:"date"`
	Stats  Stats  `json:"stats"`
}

// AnalysisResult is the response of the analyses endpoint. Raw holds the
// undecoded body it was parsed from.
type AnalysisResult struct {
	Data struct {
		ID         string             `json:"id"`
		Type       string             `json:"type"`
		Attributes AnalysisAttributes `json:"attributes"`
	} `json:"data"`

	Raw []byte `json:"-"`
}

func (r *AnalysisResult) Status() string {
	if r == nil {
		return ""
	}

	return r.Data.Attributes.Status
}

func (r *AnalysisResult) IsQueued() bool {
	return r.Status() == StatusQueued
}

// Verdict is the terminal outcome of one submission.
type Verdict struct {
	URL        string    `json:"url"`
	AnalysisID string    `json:"analysisId"`
	Status     string    `json:"status"`
	Stats      Stats     `json:"stats"`
	ScannedAt  time.Time `json:"scannedAt"`
}

// State is a snapshot of the scanner used for rendering.
type State struct {
	Input      string
	AnalysisID string
	Analysis   *AnalysisResult
	Polls      int
}

func (s State) Queued() bool {
	return s.Analysis.IsQueued()
}

func (s State) HasResult() bool {
	return s.Analysis != nil
}
