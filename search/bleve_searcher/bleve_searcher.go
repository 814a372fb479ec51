package bleve_searcher

import (
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/samber/lo"
	"github.com/tomwolanski/site_search/search"

	_ "github.com/blevesearch/bleve/v2/config"
	bleveSearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Config controls ranking and safety limits of the matcher.
// Title matches rank above summary/content matches, which rank above
// tag/category matches.
type Config struct {
	TitleBoost      float64 // default 4
	SummaryBoost    float64 // default 2
	ContentBoost    float64 // default 2
	TagsBoost       float64 // default 1
	CategoriesBoost float64 // default 1
	MaxResults      int     // default 100
	MaxQueryLen     int     // longer queries are truncated, default 128
	MinMatchLen     int     // shorter queries return no hits, default 2
}

func (c Config) withDefaults() Config {
	if c.TitleBoost == 0 {
		c.TitleBoost = 4
	}
	if c.SummaryBoost == 0 {
		c.SummaryBoost = 2
	}
	if c.ContentBoost == 0 {
		c.ContentBoost = 2
	}
	if c.TagsBoost == 0 {
		c.TagsBoost = 1
	}
	if c.CategoriesBoost == 0 {
		c.CategoriesBoost = 1
	}
	if c.MaxResults == 0 {
		c.MaxResults = 100
	}
	if c.MaxQueryLen == 0 {
		c.MaxQueryLen = 128
	}
	if c.MinMatchLen == 0 {
		c.MinMatchLen = 2
	}
	return c
}

// bleveSearcher is the implementation of the ArticleSearcher interface
// which uses an in-memory bleve index.
type bleveSearcher struct {
	cfg   Config
	index bleve.Index
}

// NewBleveSearcher returns a new ArticleSearcher over an empty index.
// Call Load to index the site entries.
func NewBleveSearcher(cfg Config) (bleveSearcher, error) {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return bleveSearcher{}, err
	}
	return bleveSearcher{cfg.withDefaults(), index}, nil
}

// Load replaces the indexed entries. The previous index is discarded,
// so a reload is all-or-nothing.
func (s *bleveSearcher) Load(entries []search.Entry) error {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return err
	}

	batch := index.NewBatch()
	for _, entry := range entries {
		if err := batch.Index(entry.Permalink, entry); err != nil {
			return err
		}
	}
	if err := index.Batch(batch); err != nil {
		return err
	}

	old := s.index
	s.index = index
	if old != nil {
		old.Close()
	}
	return nil
}

func (s *bleveSearcher) Close() {
	s.index.Close()
}

// Search searches the index for the given query.
// Empty queries and queries shorter than MinMatchLen produce no hits.
func (s *bleveSearcher) Search(qry string) search.SearchResult {
	runes := []rune(strings.TrimSpace(qry))
	if len(runes) > s.cfg.MaxQueryLen {
		runes = runes[:s.cfg.MaxQueryLen]
	}
	if len(runes) < s.cfg.MinMatchLen {
		return search.SearchResult{Hits: []search.ArticleMatch{}}
	}
	q := string(runes)

	searchRequest := bleve.NewSearchRequest(s.buildQuery(q))
	searchRequest.Size = s.cfg.MaxResults
	searchRequest.Fields = []string{"title", "permalink", "path", "date", "summary"}
	searchRequest.Highlight = bleve.NewHighlightWithStyle("ansi")

	searchResult, err := s.index.Search(searchRequest)
	if err != nil {
		return search.SearchResult{Err: err}
	}

	hits := lo.Map(searchResult.Hits, func(hit *bleveSearch.DocumentMatch, _ int) search.ArticleMatch {
		return search.ArticleMatch{
			Title:     fieldString(hit, "title"),
			Permalink: hit.ID,
			Path:      fieldString(hit, "path"),
			Date:      fieldTime(hit, "date"),
			Fragment:  getFragment(hit),
			Score:     hit.Score,
		}
	})

	return search.SearchResult{Hits: hits}
}

// buildQuery matches each field with its own boost. Every field gets an
// approximate match query plus a prefix query so partially typed words
// still hit. Field names are the entry's json names, which is what
// bleve indexes the struct under.
func (s *bleveSearcher) buildQuery(q string) query.Query {
	fields := []struct {
		name  string
		boost float64
	}{
		{"title", s.cfg.TitleBoost},
		{"summary", s.cfg.SummaryBoost},
		{"content", s.cfg.ContentBoost},
		{"tags", s.cfg.TagsBoost},
		{"categories", s.cfg.CategoriesBoost},
	}

	var parts []query.Query
	for _, f := range fields {
		match := bleve.NewMatchQuery(q)
		match.SetField(f.name)
		match.SetBoost(f.boost)
		match.SetFuzziness(1)
		parts = append(parts, match)

		prefix := bleve.NewPrefixQuery(strings.ToLower(q))
		prefix.SetField(f.name)
		prefix.SetBoost(f.boost)
		parts = append(parts, prefix)
	}

	return bleve.NewDisjunctionQuery(parts...)
}

// getFragment picks the best highlighted snippet for a hit.
func getFragment(hit *bleveSearch.DocumentMatch) string {
	for _, field := range []string{"content", "summary", "title"} {
		if fragments := hit.Fragments[field]; len(fragments) > 0 {
			return fragments[0]
		}
	}
	return fieldString(hit, "summary")
}

func fieldString(hit *bleveSearch.DocumentMatch, field string) string {
	if v, ok := hit.Fields[field].(string); ok {
		return v
	}
	return ""
}

func fieldTime(hit *bleveSearch.DocumentMatch, field string) time.Time {
	if v, ok := hit.Fields[field].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// indexMapping maps entry fields for search: english text analysis for
// title/summary/content, exact terms for tags/categories, stored-only
// permalink and path. bleve indexes the entry struct under its json
// names, so the mapping uses those.
func indexMapping() mapping.IndexMapping {
	article := bleve.NewDocumentMapping()

	english := bleve.NewTextFieldMapping()
	english.Analyzer = en.AnalyzerName
	article.AddFieldMappingsAt("title", english)
	article.AddFieldMappingsAt("summary", english)
	article.AddFieldMappingsAt("content", english)

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	article.AddFieldMappingsAt("tags", exact)
	article.AddFieldMappingsAt("categories", exact)

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	article.AddFieldMappingsAt("permalink", stored)
	article.AddFieldMappingsAt("path", stored)

	article.AddFieldMappingsAt("date", bleve.NewDateTimeFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = article
	return m
}
