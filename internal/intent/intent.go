// Package intent turns free-text chat utterances into structured intents,
// either through an LLM classification pass or a deterministic keyword
// fallback, and normalizes the extracted criteria before matching.
package intent

import (
	"strconv"
	"strings"
)

// Kind is the classification of a single user intent.
type Kind string

const (
	KindAdd             Kind = "add"
	KindUpdate          Kind = "update"
	KindDelete          Kind = "delete"
	KindSearch          Kind = "search"
	KindHelp            Kind = "help"
	KindGreeting        Kind = "greeting"
	KindCapabilityQuery Kind = "capability_query"
	KindOutOfScope      Kind = "out_of_scope"
	KindUnrecognized    Kind = "unrecognized"
)

// Intent is one structured operation extracted from an utterance. A single
// message may resolve to several intents, executed in order.
type Intent struct {
	Kind     Kind
	Criteria Criteria
}

// Range bounds a year search. Both ends are optional and inclusive.
type Range struct {
	After  *int
	Before *int
}

// Empty reports whether neither bound is set.
func (r *Range) Empty() bool {
	return r == nil || (r.After == nil && r.Before == nil)
}

// Changes holds the fields an update intent wants to overwrite. A nil field
// means the utterance did not mention it.
type Changes struct {
	Title  *string
	Author *string
	Genre  *string
	Year   *int
}

// Empty reports whether no field change was requested.
func (c *Changes) Empty() bool {
	return c == nil || (c.Title == nil && c.Author == nil && c.Genre == nil && c.Year == nil)
}

// Criteria carries the identifying fields extracted from an utterance.
// Text fields are already normalized: trimmed, with the literal string
// "null" collapsed to empty. A nil Year means "no year criterion".
type Criteria struct {
	Title   string
	Author  string
	Genre   string
	Year    *int
	Query   string
	Range   *Range
	Changes *Changes
}

// Blank reports whether no identifying criterion at all was extracted.
func (c Criteria) Blank() bool {
	return c.Title == "" && c.Author == "" && c.Genre == "" &&
		c.Year == nil && c.Query == "" && c.Range.Empty()
}

// normText trims a raw text field and treats the literal word "null" as
// absent. The model occasionally emits the word instead of a real JSON
// null, so this sanitization runs on every criteria field before matching.
func normText(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

// normYear parses a year that may arrive as a JSON number, a numeric
// string, or garbage. Anything unparsable is treated as absent.
func normYear(v any) *int {
	switch y := v.(type) {
	case float64:
		n := int(y)
		return &n
	case string:
		s := strings.TrimSpace(y)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}
