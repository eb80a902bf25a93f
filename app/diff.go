package app

import (
	jd "github.com/josephburnett/jd/lib"
)

// diffAnalyses renders the JSON difference between two analysis bodies.
// An empty string means no difference or an unreadable body.
func diffAnalyses(prevBody, nextBody []byte) string {
	if len(prevBody) == 0 || len(nextBody) == 0 {
		return ""
	}

	first, err := jd.ReadJsonString(string(prevBody))
	if err != nil {
		return ""
	}
	second, err := jd.ReadJsonString(string(nextBody))
	if err != nil {
		return ""
	}

	return first.Diff(second).Render()
}
