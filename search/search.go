package search

import "time"

// Entry is one article in the prebuilt site index. Entries are produced
// at site-build time and never mutated after loading.
type Entry struct {
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Content    string    `json:"content"` // body text excerpt
	Tags       []string  `json:"tags"`
	Categories []string  `json:"categories"`
	Permalink  string    `json:"permalink"`
	Date       time.Time `json:"date"`
	Path       string    `json:"path"` // article source file, relative to the site root
}

// ArticleMatch is one ranked hit for the current query.
type ArticleMatch struct {
	Title     string
	Permalink string
	Path      string
	Date      time.Time
	Fragment  string // highlighted snippet of the matched text
	Score     float64
}

type SearchResult struct {
	Err  error
	Hits []ArticleMatch
}

// The matcher that searches the loaded site index.
type ArticleSearcher interface {
	Load(entries []Entry) error       // Replace the indexed entries.
	Search(query string) SearchResult // Search the index for the given query.
	Close()                           // Release the index.
}
