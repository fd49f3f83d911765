package intent

import (
	"context"
	"regexp"
	"strings"
)

// Heuristic is the deterministic keyword parser used whenever the model
// path fails or its output is rejected. Unlike the model path, which may
// emit several intents per message, it always returns exactly one.
type Heuristic struct{}

func (Heuristic) Resolve(_ context.Context, utterance string) ([]Intent, error) {
	return []Intent{classifyByKeywords(utterance)}, nil
}

var (
	quotedTitleRe = regexp.MustCompile(`["']([^"']+)["']`)
	byAuthorRe    = regexp.MustCompile(`(?i)\bby\s+(.+)`)
	inGenreRe     = regexp.MustCompile(`(?i)\bin\s+(.+?)\s+genre\b`)
	trailGenreRe  = regexp.MustCompile(`(?i)\b(?:of\s+the\s+)?genre\s+([^,."']+)\s*$`)
	publishedRe   = regexp.MustCompile(`(?i)\bpublished\s+in\s+(\d{4})`)

	newTitleRe  = regexp.MustCompile(`(?i)\btitle\b.*?\bto\s+(.+)$`)
	newAuthorRe = regexp.MustCompile(`(?i)\bauthor\b.*?\bto\s+(.+)$`)
	newGenreRe  = regexp.MustCompile(`(?i)\bgenre\b.*?\bto\s+(.+)$`)
	newYearRe   = regexp.MustCompile(`(?i)\byear\b.*?\bto\s+(\d{4})`)

	// Author captures run to the end of the sentence, so everything from
	// the next structural keyword on is cut off afterwards.
	authorStopRe = regexp.MustCompile(`(?i)\s+(?:to|published|in|of|titled|from)\b.*$`)

	greetingRe = regexp.MustCompile(`\b(hi|hello|hey)\b|\bgood\s+(morning|afternoon|evening)\b`)
)

var capabilityPhrases = []string{
	"what can you do",
	"what is this app about",
	"how to use this app",
	"app about",
	"your functions",
}

func classifyByKeywords(utterance string) Intent {
	lower := strings.ToLower(utterance)

	// Update detection takes priority over the generic keyword scan so that
	// "change the author of ..." never lands in add/delete/search.
	if IsBookUpdate(utterance) {
		return Intent{Kind: KindUpdate, Criteria: extractUpdateCriteria(utterance)}
	}

	// Rules below update stay unrefined: field extraction for add happens
	// only on the model path.
	switch {
	case containsAny(lower, "add", "create"):
		return Intent{Kind: KindAdd, Criteria: Criteria{Query: utterance}}
	case containsAny(lower, "delete", "remove"):
		return Intent{Kind: KindDelete, Criteria: Criteria{Query: utterance}}
	case containsAny(lower, "search", "find", "list"):
		return Intent{Kind: KindSearch, Criteria: Criteria{Query: utterance}}
	}

	switch {
	case greetingRe.MatchString(lower):
		return Intent{Kind: KindGreeting, Criteria: Criteria{Query: utterance}}
	case containsAny(lower, capabilityPhrases...):
		return Intent{Kind: KindCapabilityQuery, Criteria: Criteria{Query: utterance}}
	case containsAny(lower, "help", "how"):
		return Intent{Kind: KindHelp, Criteria: Criteria{Query: utterance}}
	case containsAny(lower, "weather", "joke", "movie", "news"):
		return Intent{Kind: KindOutOfScope, Criteria: Criteria{Query: utterance}}
	}

	return Intent{Kind: KindUnrecognized, Criteria: Criteria{Query: utterance}}
}

// IsBookUpdate reports whether the utterance reads like a book update
// request: an update verb plus at least one book-field word. The corrector
// uses the same predicate to repair model misclassifications.
func IsBookUpdate(utterance string) bool {
	lower := strings.ToLower(utterance)
	return containsAny(lower, "update", "change", "modify") &&
		containsAny(lower, "book", "title", "author", "genre", "year", "published")
}

// extractUpdateCriteria pulls both the identifying criteria and the
// requested field changes out of an update utterance.
func extractUpdateCriteria(utterance string) Criteria {
	lower := strings.ToLower(utterance)
	c := extractBookFields(utterance)

	ch := &Changes{}
	if strings.Contains(lower, "title") && strings.Contains(lower, " to ") {
		if m := newTitleRe.FindStringSubmatch(utterance); m != nil {
			v := trimQuotes(m[1])
			ch.Title = &v
		}
	}
	if strings.Contains(lower, "author") && strings.Contains(lower, " to ") {
		if m := newAuthorRe.FindStringSubmatch(utterance); m != nil {
			v := trimQuotes(m[1])
			ch.Author = &v
		}
	}
	if strings.Contains(lower, "genre") && strings.Contains(lower, " to ") {
		if m := newGenreRe.FindStringSubmatch(utterance); m != nil {
			v := trimQuotes(m[1])
			ch.Genre = &v
		}
	}
	if strings.Contains(lower, "year") && strings.Contains(lower, " to ") {
		if m := newYearRe.FindStringSubmatch(utterance); m != nil {
			if y := normYear(m[1]); y != nil {
				ch.Year = y
			}
		}
	}
	if !ch.Empty() {
		c.Changes = ch
	}

	// A field that is being overwritten cannot also identify the original
	// record, so drop it from the find criteria here as well.
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

// extractBookFields recovers identifying criteria from free text: a quoted
// title, a "by <author>" run, an "in <genre> genre" or trailing "genre <g>"
// phrase, and a "published in <year>" token.
func extractBookFields(utterance string) Criteria {
	var c Criteria

	if m := quotedTitleRe.FindStringSubmatch(utterance); m != nil {
		c.Title = strings.TrimSpace(m[1])
	}
	if m := byAuthorRe.FindStringSubmatch(utterance); m != nil {
		c.Author = cleanAuthor(m[1])
	}
	// The trailing form goes first: in "published in 1965 of the genre X"
	// the "in ... genre" pattern would capture the year tokens.
	if m := trailGenreRe.FindStringSubmatch(utterance); m != nil {
		c.Genre = strings.TrimSpace(m[1])
	} else if m := inGenreRe.FindStringSubmatch(utterance); m != nil {
		c.Genre = strings.TrimSpace(m[1])
	}
	if m := publishedRe.FindStringSubmatch(utterance); m != nil {
		c.Year = normYear(m[1])
	}

	return c
}

func cleanAuthor(s string) string {
	s = authorStopRe.ReplaceAllString(s, "")
	return strings.Trim(strings.TrimSpace(s), `"',.!?`)
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

func containsAny(lower string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
