package intent

// Correct repairs the model's most common failure mode: routing book update
// phrasing to out_of_scope. An out_of_scope intent whose utterance passes
// the book-update predicate is replaced by the heuristic update extraction.
// No other kind is ever rewritten. Applies to model-path results only.
func Correct(utterance string, intents []Intent) []Intent {
	if !IsBookUpdate(utterance) {
		return intents
	}
	out := make([]Intent, len(intents))
	for i, it := range intents {
		if it.Kind == KindOutOfScope {
			out[i] = Intent{Kind: KindUpdate, Criteria: extractUpdateCriteria(utterance)}
			continue
		}
		out[i] = it
	}
	return out
}
