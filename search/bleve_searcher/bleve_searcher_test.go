package bleve_searcher

import (
	"strings"
	"testing"
	"time"

	"github.com/tomwolanski/site_search/search"
)

func makeEntry(title, permalink string, tags []string) search.Entry {
	return search.Entry{
		Title:     title,
		Summary:   "summary of " + title,
		Content:   "body of " + title,
		Tags:      tags,
		Permalink: permalink,
		Date:      time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Path:      "content" + permalink + "index.md",
	}
}

func newLoadedSearcher(t *testing.T, entries []search.Entry) *bleveSearcher {
	t.Helper()
	s, err := NewBleveSearcher(Config{})
	if err != nil {
		t.Fatalf("NewBleveSearcher failed: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Load(entries); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return &s
}

func permalinks(hits []search.ArticleMatch) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Permalink
	}
	return out
}

func TestSearch_TitleMatch(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
		makeEntry("Garbage Collection", "/posts/garbage-collection/", nil),
	})

	result := s.Search("actor")
	if result.Err != nil {
		t.Fatalf("Search failed: %v", result.Err)
	}
	if len(result.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d: %v", len(result.Hits), permalinks(result.Hits))
	}
	if result.Hits[0].Permalink != "/posts/actor-model/" {
		t.Errorf("expected actor-model hit, got %q", result.Hits[0].Permalink)
	}
	if result.Hits[0].Title != "Actor Model" {
		t.Errorf("expected stored title, got %q", result.Hits[0].Title)
	}
	want := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	if !result.Hits[0].Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, result.Hits[0].Date)
	}
}

func TestSearch_Prefix(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	result := s.Search("acto")
	if len(result.Hits) != 1 {
		t.Fatalf("expected partially typed word to hit, got %d hits", len(result.Hits))
	}
}

func TestSearch_NoMatch(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	result := s.Search("zzz-no-such-word")
	if result.Err != nil {
		t.Fatalf("Search failed: %v", result.Err)
	}
	if len(result.Hits) != 0 {
		t.Errorf("expected no hits, got %v", permalinks(result.Hits))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	// A real query first, then clearing the input must clear results
	// regardless of prior state.
	if result := s.Search("actor"); len(result.Hits) == 0 {
		t.Fatal("setup query returned no hits")
	}

	for _, q := range []string{"", "   ", "a"} {
		result := s.Search(q)
		if result.Err != nil {
			t.Fatalf("Search(%q) failed: %v", q, result.Err)
		}
		if len(result.Hits) != 0 {
			t.Errorf("Search(%q): expected no hits, got %v", q, permalinks(result.Hits))
		}
	}
}

func TestSearch_TitleOutranksTags(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Writing Unit Tests", "/posts/unit-tests/", []string{"actor"}),
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	result := s.Search("actor")
	if len(result.Hits) < 2 {
		t.Fatalf("expected both entries to match, got %v", permalinks(result.Hits))
	}
	if result.Hits[0].Permalink != "/posts/actor-model/" {
		t.Errorf("expected the title match to rank first, got %v", permalinks(result.Hits))
	}
	if result.Hits[0].Score <= result.Hits[1].Score {
		t.Errorf("expected descending scores, got %v then %v", result.Hits[0].Score, result.Hits[1].Score)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
		makeEntry("Actors in Akka.NET", "/posts/akka/", []string{"actor"}),
	})

	first := s.Search("actor")
	second := s.Search("actor")

	if first.Err != nil || second.Err != nil {
		t.Fatalf("Search failed: %v, %v", first.Err, second.Err)
	}
	got, want := permalinks(second.Hits), permalinks(first.Hits)
	if len(got) != len(want) {
		t.Fatalf("hit counts differ: %v vs %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hit %d differs: %q vs %q", i, got[i], want[i])
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	// No Load call: this is the widget's state after a failed index
	// fetch. Queries must degrade to empty results, not fail.
	s, err := NewBleveSearcher(Config{})
	if err != nil {
		t.Fatalf("NewBleveSearcher failed: %v", err)
	}
	defer s.Close()

	result := s.Search("actor")
	if result.Err != nil {
		t.Fatalf("expected silent degradation, got error: %v", result.Err)
	}
	if len(result.Hits) != 0 {
		t.Errorf("expected no hits from an empty index, got %d", len(result.Hits))
	}
}

func TestIndexedFieldNames(t *testing.T) {
	// bleve indexes entries under their json names. The mapping and
	// every per-field query must use the same names or boosts and
	// analyzers silently target fields that do not exist.
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", []string{"dotnet"}),
	})

	fields, err := s.index.Fields()
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}

	indexed := make(map[string]bool, len(fields))
	for _, f := range fields {
		indexed[f] = true
	}
	for _, want := range []string{"title", "summary", "content", "tags", "date"} {
		if !indexed[want] {
			t.Errorf("expected indexed field %q, got %v", want, fields)
		}
	}
	if indexed["Title"] {
		t.Errorf("unexpected Go-named field in index: %v", fields)
	}
}

func TestSearch_TruncatesOnRuneBoundary(t *testing.T) {
	s, err := NewBleveSearcher(Config{MaxQueryLen: 7})
	if err != nil {
		t.Fatalf("NewBleveSearcher failed: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Load([]search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Seven runes land in the middle of a multi-byte character when
	// counted in bytes. The truncated query must stay valid UTF-8 and
	// still match on its intact leading tokens.
	result := s.Search("actor 日本語")
	if result.Err != nil {
		t.Fatalf("Search failed: %v", result.Err)
	}
	if len(result.Hits) != 1 {
		t.Errorf("expected the truncated query to match, got %d hits", len(result.Hits))
	}
}

func TestSearch_LongQueryTruncated(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	result := s.Search("actor " + strings.Repeat("x", 500))
	if result.Err != nil {
		t.Fatalf("Search failed: %v", result.Err)
	}
	if len(result.Hits) != 1 {
		t.Errorf("expected truncated query to still match, got %d hits", len(result.Hits))
	}
}

func TestLoad_ReplacesEntries(t *testing.T) {
	s := newLoadedSearcher(t, []search.Entry{
		makeEntry("Actor Model", "/posts/actor-model/", nil),
	})

	if err := s.Load([]search.Entry{
		makeEntry("Garbage Collection", "/posts/garbage-collection/", nil),
	}); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if result := s.Search("actor"); len(result.Hits) != 0 {
		t.Errorf("expected old entries to be gone, got %v", permalinks(result.Hits))
	}
	if result := s.Search("garbage"); len(result.Hits) != 1 {
		t.Errorf("expected new entries to be searchable, got %d hits", len(result.Hits))
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.TitleBoost <= cfg.SummaryBoost {
		t.Errorf("title boost %v should exceed summary boost %v", cfg.TitleBoost, cfg.SummaryBoost)
	}
	if cfg.SummaryBoost <= cfg.TagsBoost {
		t.Errorf("summary boost %v should exceed tags boost %v", cfg.SummaryBoost, cfg.TagsBoost)
	}
	if cfg.MaxResults != 100 {
		t.Errorf("expected default cap 100, got %d", cfg.MaxResults)
	}
}
