package app

import (
	"encoding/json"
	"fmt"
	"os"
)

// Headers are extra header key-value pairs sent with every API request,
// e.g. a proxy authorization.
type Headers map[string]string

// LoadHeadersFromFile reads a JSON object of string values.
func LoadHeadersFromFile(filename string) (Headers, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var headers Headers
	if err := json.Unmarshal(content, &headers); err != nil {
		return nil, fmt.Errorf("cannot parse header file %s: %w", filename, err)
	}

	return headers, nil
}
