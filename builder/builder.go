// Package builder produces the JSON site index from the markdown content
// directory. It runs at site-build time, never inside the widget's
// query path.
package builder

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/tomwolanski/site_search/search"
)

// Body excerpts longer than this are cut off. The widget only needs
// enough text to match and highlight, not the whole article.
const maxExcerptLen = 5000

const maxSummaryLen = 240

// frontMatter is the subset of article front matter carried into the index.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Summary     string   `yaml:"summary"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Categories  []string `yaml:"categories"`
	Date        string   `yaml:"date"`
	Permalink   string   `yaml:"permalink"`
	Draft       bool     `yaml:"draft"`
}

// Build scans root for articles with the given extensions and returns
// index entries, newest first. Drafts are skipped.
func Build(root string, extensions []string) ([]search.Entry, error) {
	paths := listArticles(root, extensions)

	entries := make([]*search.Entry, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			entry, err := buildEntry(root, path)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := lo.FilterMap(entries, func(e *search.Entry, _ int) (search.Entry, bool) {
		if e == nil {
			return search.Entry{}, false
		}
		return *e, true
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})

	return result, nil
}

// buildEntry reads one article and turns it into an index entry.
// Returns nil for drafts.
func buildEntry(root, path string) (*search.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	front, body := splitFrontMatter(string(data))

	var fm frontMatter
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &fm); err != nil {
			return nil, err
		}
	}
	if fm.Draft {
		return nil, nil
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, err
	}

	title := fm.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	summary := fm.Summary
	if summary == "" {
		summary = fm.Description
	}
	if summary == "" {
		summary = truncate(collapseWhitespace(body), maxSummaryLen)
	}

	permalink := fm.Permalink
	if permalink == "" {
		permalink = permalinkFor(rel)
	}

	return &search.Entry{
		Title:      title,
		Summary:    summary,
		Content:    truncate(body, maxExcerptLen),
		Tags:       fm.Tags,
		Categories: fm.Categories,
		Permalink:  permalink,
		Date:       articleDate(fm.Date, path),
		Path:       filepath.ToSlash(rel),
	}, nil
}

// listArticles returns all article files under root with one of the
// given extensions.
func listArticles(root string, extensions []string) []string {
	var matches []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if lo.Contains(extensions, filepath.Ext(path)) {
			matches = append(matches, path)
		}
		return nil
	})
	return matches
}

// splitFrontMatter separates the leading ----delimited YAML block from
// the article body. Files without front matter are all body.
func splitFrontMatter(s string) (front, body string) {
	if !strings.HasPrefix(s, "---") {
		return "", s
	}
	rest := strings.TrimPrefix(s[len("---"):], "\r")
	if !strings.HasPrefix(rest, "\n") {
		return "", s
	}
	rest = rest[1:]

	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", s
	}

	front = rest[:end]
	body = rest[end+len("\n---"):]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return front, body
}

// articleDate parses the front matter date, falling back to the file's
// modification time when the field is missing or unparseable.
func articleDate(value, path string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().UTC()
	}
	return time.Time{}
}

// permalinkFor derives the published URL from the article's path under
// the content root, hugo style.
func permalinkFor(rel string) string {
	p := strings.TrimSuffix(rel, filepath.Ext(rel))
	p = filepath.ToSlash(p)
	p = strings.TrimSuffix(p, "/index")
	return "/" + strings.ToLower(p) + "/"
}

var whitespace = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
