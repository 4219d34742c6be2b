// Package devseed loads JSON seed files used to pre-populate the in-memory
// mock node and the sandbox server during development and testing.
package devseed

import (
	"encoding/json"
	"fmt"
	"os"
)

// EntrySeed describes one ledger entry to pre-load into a mock node.
// Author and Parents are optional; the mock fills in defaults.
type EntrySeed struct {
	Data    json.RawMessage `json:"data"`
	Author  string          `json:"author,omitempty"`
	Parents []string        `json:"parents,omitempty"`
}

// LoadEntrySeed reads a JSON array of entry seeds from path.
func LoadEntrySeed(path string) ([]EntrySeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}

	var entries []EntrySeed
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("devseed: parse %s: %w", path, err)
	}

	for i, e := range entries {
		if len(e.Data) == 0 {
			return nil, fmt.Errorf("devseed: entry %d missing data", i)
		}
	}
	return entries, nil
}
