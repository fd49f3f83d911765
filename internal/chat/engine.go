// Package chat implements the conversation controller: it resolves one user
// utterance into an ordered intent sequence and executes it against the
// book store, producing the reply transcript for that turn.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sant0-9/bookpal/internal/book"
	"github.com/sant0-9/bookpal/internal/bookstore"
	"github.com/sant0-9/bookpal/internal/intent"
	"github.com/sant0-9/bookpal/internal/match"
)

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Speaker Speaker
	Text    string
}

// Engine executes chat turns. One turn runs to completion before the next
// utterance is accepted; nothing here spawns parallel work.
type Engine struct {
	store    bookstore.Store
	resolver intent.Resolver
	fallback intent.Resolver
	logger   *zap.Logger
}

// NewEngine wires a conversation engine. The resolver is normally the model
// path; the heuristic parser is always kept as its fallback.
func NewEngine(store bookstore.Store, resolver intent.Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		resolver: resolver,
		fallback: intent.Heuristic{},
		logger:   logger,
	}
}

// HandleUtterance runs one full chat turn and returns the transcript
// entries it produced, starting with the user's own message. Every failure
// path ends in a transcript message; nothing aborts the turn.
func (e *Engine) HandleUtterance(ctx context.Context, utterance string) []Message {
	t := &turn{
		engine:    e,
		utterance: utterance,
		seen:      make(map[book.Book]struct{}),
	}
	t.out = append(t.out, Message{Speaker: SpeakerUser, Text: utterance})

	intents, err := e.resolver.Resolve(ctx, utterance)
	if err != nil {
		e.logger.Warn("model path unavailable, using keyword fallback", zap.Error(err))
		intents, _ = e.fallback.Resolve(ctx, utterance)
	}

	t.run(ctx, intents)
	return t.out
}

// turn is the per-utterance state: the snapshot, the transcript accumulator
// and the cross-intent search aggregation.
type turn struct {
	engine    *Engine
	utterance string
	books     []book.Book

	out        []Message
	seen       map[book.Book]struct{}
	results    []book.Book
	hasSearch  bool
	recognized bool
}

func (t *turn) say(text string) {
	t.out = append(t.out, Message{Speaker: SpeakerAssistant, Text: text})
}

func (t *turn) run(ctx context.Context, intents []intent.Intent) {
	if err := t.refresh(ctx); err != nil {
		t.say(fmt.Sprintf("Failed to load your books: %s", err))
	}

	for _, it := range intents {
		t.engine.logger.Debug("executing intent", zap.String("kind", string(it.Kind)))

		var err error
		switch it.Kind {
		case intent.KindGreeting:
			t.recognized = true
			t.say(replyGreeting)
		case intent.KindCapabilityQuery:
			t.recognized = true
			t.say(replyCapability)
		case intent.KindOutOfScope:
			t.recognized = true
			t.say(replyOutOfScope)
		case intent.KindHelp:
			t.recognized = true
			t.say(helpReply(t.utterance))
		case intent.KindAdd:
			t.recognized = true
			err = t.handleAdd(ctx, it.Criteria)
		case intent.KindDelete:
			t.recognized = true
			err = t.handleDelete(ctx, it.Criteria)
		case intent.KindUpdate:
			t.recognized = true
			err = t.handleUpdate(ctx, it.Criteria)
		case intent.KindSearch:
			t.recognized = true
			t.hasSearch = true
			t.handleSearch(it.Criteria)
		}
		// Contain failures to the intent that raised them; siblings in the
		// same utterance still run.
		if err != nil {
			t.engine.logger.Warn("intent failed", zap.String("kind", string(it.Kind)), zap.Error(err))
			t.say(err.Error())
		}
	}

	switch {
	case t.hasSearch:
		t.reportSearch()
	case !t.recognized:
		t.say(replyUnrecognized)
	}
}

// refresh re-reads the collection snapshot. Called at turn start and after
// every successful mutation so later intents see earlier effects.
func (t *turn) refresh(ctx context.Context) error {
	books, err := t.engine.store.List(ctx)
	if err != nil {
		return err
	}
	t.books = books
	return nil
}

func (t *turn) handleAdd(ctx context.Context, c intent.Criteria) error {
	nb := book.Book{
		Title:  orUnknown(c.Title),
		Author: orUnknown(c.Author),
		Genre:  orUnknown(c.Genre),
	}
	if c.Year != nil {
		nb.Year = *c.Year
	}

	for _, b := range t.books {
		if b.SameEdition(nb) {
			t.say(fmt.Sprintf("Book %s already exists.", nb.Label()))
			return nil
		}
	}

	created, err := t.engine.store.Create(ctx, nb)
	if err != nil {
		t.say(fmt.Sprintf("Failed to add book: %s. Please ensure all details are valid.", err))
		return nil
	}
	if err := t.refresh(ctx); err != nil {
		return err
	}
	t.say(fmt.Sprintf("Added: %s by %s (%d) [%s]", created.Title, created.Author, created.Year, created.Genre))
	return nil
}

func (t *turn) handleDelete(ctx context.Context, c intent.Criteria) error {
	matches := match.Filter(t.books, match.Params{
		Criteria:  c,
		Mode:      match.ModeDelete,
		Utterance: t.utterance,
	})

	switch len(matches) {
	case 0:
		t.say("Book to delete not found.")
	case 1:
		target := matches[0]
		if err := t.engine.store.Delete(ctx, target.ID); err != nil {
			t.say(fmt.Sprintf("Failed to delete book: %s", err))
			return nil
		}
		if err := t.refresh(ctx); err != nil {
			return err
		}
		t.say(fmt.Sprintf("Deleted book %q by %s.", target.Title, target.Author))
	default:
		t.sayAmbiguous(matches)
	}
	return nil
}

func (t *turn) handleUpdate(ctx context.Context, c intent.Criteria) error {
	matches := match.Filter(t.books, match.Params{
		Criteria: c,
		Mode:     match.ModeUpdate,
	})

	switch len(matches) {
	case 0:
		t.say("Book to update not found.")
	case 1:
		updated := applyChanges(matches[0], c.Changes)
		if _, err := t.engine.store.Update(ctx, updated.ID, updated); err != nil {
			t.say(fmt.Sprintf("Failed to update book: %s", err))
			return nil
		}
		if err := t.refresh(ctx); err != nil {
			return err
		}
		t.say(fmt.Sprintf("Updated book %q.", updated.Title))
	default:
		t.sayAmbiguous(matches)
	}
	return nil
}

// handleSearch only accumulates; results from all search intents in the
// utterance are deduplicated and reported once after the whole pass.
func (t *turn) handleSearch(c intent.Criteria) {
	matches := match.Filter(t.books, match.Params{
		Criteria:  c,
		Mode:      match.ModeSearch,
		Utterance: t.utterance,
	})
	for _, b := range matches {
		if _, dup := t.seen[b]; dup {
			continue
		}
		t.seen[b] = struct{}{}
		t.results = append(t.results, b)
	}
}

func (t *turn) reportSearch() {
	if len(t.results) == 0 {
		t.say("No matching books found.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d book(s):", len(t.results))
	for _, b := range t.results {
		fmt.Fprintf(&sb, "\n- %s by %s (%d) [%s]", b.Title, b.Author, b.Year, b.Genre)
	}
	t.say(sb.String())
}

// sayAmbiguous lists every matched book and asks the user to narrow the
// criteria. No mutation happens on an ambiguous match.
func (t *turn) sayAmbiguous(matches []book.Book) {
	labels := make([]string, len(matches))
	for i, b := range matches {
		labels[i] = b.Label()
	}
	t.say(fmt.Sprintf("Multiple books matched: %s. Please be more specific.", strings.Join(labels, ", ")))
}

// applyChanges merges the requested field changes over the existing record.
// Each field is replaced only when explicitly provided; the id is never
// touched.
func applyChanges(b book.Book, ch *intent.Changes) book.Book {
	if ch.Empty() {
		return b
	}
	if ch.Title != nil {
		b.Title = *ch.Title
	}
	if ch.Author != nil {
		b.Author = *ch.Author
	}
	if ch.Genre != nil {
		b.Genre = *ch.Genre
	}
	if ch.Year != nil {
		b.Year = *ch.Year
	}
	return b
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return strings.TrimSpace(s)
}
