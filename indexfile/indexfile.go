// Package indexfile reads and writes the flat JSON site index the search
// widget consumes. The index is produced once at site-build time and is
// read-only afterwards.
package indexfile

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tomwolanski/site_search/search"
)

// DefaultClient is used by Fetch. The timeout keeps a dead host from
// hanging widget startup.
var DefaultClient = &http.Client{Timeout: 15 * time.Second}

// Fetch downloads the index from the given URL and parses it.
func Fetch(url string) ([]search.Entry, error) {
	resp, err := DefaultClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index %s: unexpected status %s", url, resp.Status)
	}

	var entries []search.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", url, err)
	}
	return entries, nil
}

// Load reads the index from a local file.
func Load(path string) ([]search.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []search.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return entries, nil
}

// Write stores the given entries at path.
func Write(path string, entries []search.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
