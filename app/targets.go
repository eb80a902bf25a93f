package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Targets struct {
	URLs []string `json:"urls"`
}

// LoadTargetsFromFile reads the URLs to scan from path. JSON files hold a
// {"urls": [...]} object; any other file lists one URL per line, with blank
// lines and lines starting with # ignored.
func LoadTargetsFromFile(path string) (*Targets, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var targets *Targets
		if err := json.Unmarshal(content, &targets); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %s file: %w", path, err)
		}
		if targets == nil {
			targets = &Targets{}
		}

		return targets, nil
	}

	targets := &Targets{URLs: []string{}}
	lines := bufio.NewScanner(bytes.NewReader(content))
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets.URLs = append(targets.URLs, line)
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return targets, nil
}

// Expand resolves range patterns in every URL, keeping the file order.
func (t *Targets) Expand(expander *Expander) ([]string, error) {
	expanded := []string{}
	for _, raw := range t.URLs {
		urls, err := expander.Expand(raw)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, urls...)
	}

	return expanded, nil
}
