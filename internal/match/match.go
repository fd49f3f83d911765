// Package match filters the in-memory collection snapshot against the
// criteria extracted from an utterance. Every explicitly provided criterion
// must hold (logical AND); absent criteria are vacuously true.
package match

import (
	"regexp"
	"strings"

	"github.com/sant0-9/bookpal/internal/book"
	"github.com/sant0-9/bookpal/internal/intent"
)

// Mode selects the strictness rules for the intent being executed.
type Mode int

const (
	// ModeSearch matches titles by substring and honors the list-all
	// short-circuit.
	ModeSearch Mode = iota
	// ModeDelete matches like search but may additionally recover an
	// author list from the raw utterance when no author was extracted.
	ModeDelete
	// ModeUpdate matches titles by exact equality and excludes criteria
	// fields that are about to be overwritten.
	ModeUpdate
)

// Params bundles one filtering request.
type Params struct {
	Criteria intent.Criteria
	Mode     Mode
	// Utterance is the original user message; only delete-mode author
	// inference reads it.
	Utterance string
}

var (
	listSepRe = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+|\s+or\s+`)
	byNamesRe = regexp.MustCompile(`by\s+([a-z0-9,\s&.]+)`)
)

// Filter returns the books matching the given criteria.
func Filter(books []book.Book, p Params) []book.Book {
	c := p.Criteria
	if p.Mode == ModeUpdate {
		c = withoutChangedFields(c)
	}

	query := strings.ToLower(c.Query)
	if p.Mode == ModeSearch && listAll(c, query) {
		out := make([]book.Book, len(books))
		copy(out, books)
		return out
	}

	authors := splitList(c.Author)
	if p.Mode == ModeDelete && len(authors) == 0 && query != "" {
		authors = inferAuthors(p.Utterance)
	}

	var keywords []string
	if len(authors) == 0 && query != "" && query != "all" && !strings.Contains(query, "list all") {
		keywords = splitList(query)
	}

	title := strings.ToLower(c.Title)
	genre := strings.ToLower(c.Genre)

	var out []book.Book
	for _, b := range books {
		if title != "" {
			bt := strings.ToLower(b.Title)
			if p.Mode == ModeUpdate {
				if bt != title {
					continue
				}
			} else if !strings.Contains(bt, title) {
				continue
			}
		}
		if len(authors) > 0 && !containsAnyOf(b.Author, authors) {
			continue
		}
		if genre != "" && !strings.Contains(strings.ToLower(b.Genre), genre) {
			continue
		}
		if c.Year != nil && b.Year != *c.Year {
			continue
		}
		if !c.Range.Empty() {
			if c.Range.After != nil && b.Year < *c.Range.After {
				continue
			}
			if c.Range.Before != nil && b.Year > *c.Range.Before {
				continue
			}
		}
		if len(keywords) > 0 && !matchesKeyword(b, keywords) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// withoutChangedFields drops find criteria that are also being overwritten:
// the record is still identified by its old values, and the new value must
// never mask it.
func withoutChangedFields(c intent.Criteria) intent.Criteria {
	ch := c.Changes
	if ch.Empty() {
		return c
	}
	if ch.Title != nil {
		c.Title = ""
	}
	if ch.Author != nil {
		c.Author = ""
	}
	if ch.Genre != nil {
		c.Genre = ""
	}
	if ch.Year != nil {
		c.Year = nil
	}
	return c
}

// listAll reports whether the search asks for the whole collection, either
// explicitly or by providing no criteria at all.
func listAll(c intent.Criteria, query string) bool {
	if query == "all" || strings.Contains(query, "list all") {
		return true
	}
	return c.Blank()
}

// splitList splits a value on commas, " and " and " or " into trimmed,
// lowercased parts. A plain single value yields a one-element list.
func splitList(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range listSepRe.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// inferAuthors recovers an author list from a "by <names>" run in the raw
// utterance. Used only for delete intents that arrived with a bare query.
func inferAuthors(utterance string) []string {
	m := byNamesRe.FindStringSubmatch(strings.ToLower(utterance))
	if m == nil {
		return nil
	}
	return splitList(m[1])
}

func containsAnyOf(field string, needles []string) bool {
	f := strings.ToLower(field)
	for _, n := range needles {
		if strings.Contains(f, n) {
			return true
		}
	}
	return false
}

func matchesKeyword(b book.Book, keywords []string) bool {
	title := strings.ToLower(b.Title)
	genre := strings.ToLower(b.Genre)
	author := strings.ToLower(b.Author)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(genre, kw) || strings.Contains(author, kw) {
			return true
		}
	}
	return false
}
