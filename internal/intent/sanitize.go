package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput signals that the model's raw text could not be turned
// into a valid intent array. Callers fall back to the heuristic parser and
// never surface this to the user.
var ErrMalformedOutput = errors.New("model output is not a valid intent array")

// rawIntent mirrors one element of the JSON array the model is instructed
// to emit. Data must be present as a key, though its value may be null.
type rawIntent struct {
	Intent *string         `json:"intent"`
	Data   json.RawMessage `json:"data"`
}

// rawCriteria is the tolerant wire shape of an intent's data object. Text
// fields are decoded as any because the model sometimes emits numbers as
// strings and vice versa.
type rawCriteria struct {
	Title          any            `json:"title"`
	Author         any            `json:"author"`
	Genre          any            `json:"genre"`
	Year           any            `json:"year"`
	Query          any            `json:"query"`
	Range          *rawRange      `json:"range"`
	FieldsToUpdate map[string]any `json:"fieldsToUpdate"`
}

type rawRange struct {
	After  any `json:"after"`
	Before any `json:"before"`
}

// ExtractIntents locates the JSON array inside the model's raw output,
// parses it, and validates its shape. The model is told to return only the
// array, but in practice it wraps it in prose often enough that the text
// between the first '[' and the last ']' is the only part trusted.
func ExtractIntents(raw string) ([]Intent, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no array brackets found", ErrMalformedOutput)
	}

	var items []rawIntent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	intents := make([]Intent, 0, len(items))
	for _, item := range items {
		if item.Intent == nil || *item.Intent == "" {
			return nil, fmt.Errorf("%w: element missing intent field", ErrMalformedOutput)
		}
		if item.Data == nil {
			return nil, fmt.Errorf("%w: element missing data field", ErrMalformedOutput)
		}
		crit, err := parseCriteria(item.Data)
		if err != nil {
			return nil, err
		}
		intents = append(intents, Intent{Kind: Kind(*item.Intent), Criteria: crit})
	}
	return intents, nil
}

// parseCriteria decodes and normalizes one data object. A JSON null data
// value is legal and yields empty criteria.
func parseCriteria(data json.RawMessage) (Criteria, error) {
	var rc rawCriteria
	if err := json.Unmarshal(data, &rc); err != nil {
		return Criteria{}, fmt.Errorf("%w: bad data object: %v", ErrMalformedOutput, err)
	}

	c := Criteria{
		Title:  normText(rc.Title),
		Author: normText(rc.Author),
		Genre:  normText(rc.Genre),
		Year:   normYear(rc.Year),
		Query:  normText(rc.Query),
	}

	if rc.Range != nil {
		r := &Range{After: normYear(rc.Range.After), Before: normYear(rc.Range.Before)}
		if !r.Empty() {
			c.Range = r
		}
	}

	if len(rc.FieldsToUpdate) > 0 {
		ch := &Changes{}
		if v := normText(rc.FieldsToUpdate["title"]); v != "" {
			ch.Title = &v
		}
		if v := normText(rc.FieldsToUpdate["author"]); v != "" {
			ch.Author = &v
		}
		if v := normText(rc.FieldsToUpdate["genre"]); v != "" {
			ch.Genre = &v
		}
		ch.Year = normYear(rc.FieldsToUpdate["year"])
		if !ch.Empty() {
			c.Changes = ch
		}
	}

	return c, nil
}
