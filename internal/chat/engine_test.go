package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/bookpal/internal/book"
	"github.com/sant0-9/bookpal/internal/intent"
)

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

// memStore is an in-memory Store with optional fault injection.
type memStore struct {
	books  []book.Book
	nextID int

	listErr   error
	createErr error
}

func (s *memStore) List(ctx context.Context) ([]book.Book, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]book.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *memStore) Create(ctx context.Context, b book.Book) (book.Book, error) {
	if s.createErr != nil {
		return book.Book{}, s.createErr
	}
	s.nextID++
	b.ID = fmt.Sprintf("b%d", s.nextID)
	s.books = append(s.books, b)
	return b, nil
}

func (s *memStore) Update(ctx context.Context, id string, b book.Book) (book.Book, error) {
	for i := range s.books {
		if s.books[i].ID == id {
			b.ID = id
			s.books[i] = b
			return b, nil
		}
	}
	return book.Book{}, fmt.Errorf("book %s not found", id)
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	for i := range s.books {
		if s.books[i].ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("book %s not found", id)
}

// stubResolver returns a fixed classification, standing in for the model.
type stubResolver struct {
	intents []intent.Intent
	err     error
}

func (r stubResolver) Resolve(ctx context.Context, utterance string) ([]intent.Intent, error) {
	return r.intents, r.err
}

func seededStore() *memStore {
	return &memStore{
		books: []book.Book{
			{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Year: 1965},
			{ID: "b2", Title: "Dune Messiah", Author: "Frank Herbert", Genre: "Science Fiction", Year: 1969},
			{ID: "b3", Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Year: 1937},
		},
		nextID: 3,
	}
}

// replies strips the leading user echo and returns the assistant texts.
func replies(t *testing.T, msgs []Message, utterance string) []string {
	t.Helper()
	require.NotEmpty(t, msgs)
	require.Equal(t, SpeakerUser, msgs[0].Speaker)
	require.Equal(t, utterance, msgs[0].Text)

	var out []string
	for _, m := range msgs[1:] {
		require.Equal(t, SpeakerAssistant, m.Speaker)
		out = append(out, m.Text)
	}
	return out
}

func TestEngineAdd(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{
			Title: "It", Author: "Stephen King", Genre: "Horror", Year: intp(1986),
		}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "add It"), "add It")

	require.Equal(t, []string{"Added: It by Stephen King (1986) [Horror]"}, got)
	require.Len(t, store.books, 4)
	assert.Equal(t, "It", store.books[3].Title)
}

func TestEngineAddDefaultsMissingFields(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{Title: "Mysterious Book"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "add"), "add")

	require.Equal(t, []string{"Added: Mysterious Book by Unknown (0) [Unknown]"}, got)
	added := store.books[3]
	assert.Equal(t, "Unknown", added.Author)
	assert.Equal(t, "Unknown", added.Genre)
	assert.Zero(t, added.Year)
}

func TestEngineAddDuplicate(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{
			Title: "dune", Author: "FRANK HERBERT", Year: intp(1965),
		}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "add dune"), "add dune")

	require.Equal(t, []string{`Book "dune" by FRANK HERBERT (1965) already exists.`}, got)
	assert.Len(t, store.books, 3)
}

func TestEngineAddStoreFailure(t *testing.T) {
	store := seededStore()
	store.createErr = errors.New("disk full")
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{Title: "It"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "add It"), "add It")

	require.Equal(t, []string{"Failed to add book: disk full. Please ensure all details are valid."}, got)
	assert.Len(t, store.books, 3)
}

func TestEngineDelete(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindDelete, Criteria: intent.Criteria{Title: "Hobbit"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "delete the hobbit"), "delete the hobbit")

	require.Equal(t, []string{`Deleted book "The Hobbit" by J.R.R. Tolkien.`}, got)
	require.Len(t, store.books, 2)
}

func TestEngineDeleteNotFound(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindDelete, Criteria: intent.Criteria{Title: "Neuromancer"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "delete neuromancer"), "delete neuromancer")

	require.Equal(t, []string{"Book to delete not found."}, got)
	assert.Len(t, store.books, 3)
}

func TestEngineDeleteAmbiguousDoesNotMutate(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindDelete, Criteria: intent.Criteria{Author: "Frank Herbert"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "delete herbert books"), "delete herbert books")

	require.Len(t, got, 1)
	assert.Equal(t, `Multiple books matched: "Dune" by Frank Herbert (1965), "Dune Messiah" by Frank Herbert (1969). Please be more specific.`, got[0])
	assert.Len(t, store.books, 3)
}

func TestEngineUpdate(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindUpdate, Criteria: intent.Criteria{
			Title:   "Dune",
			Changes: &intent.Changes{Year: intp(1966), Genre: strp("Sci-Fi")},
		}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "update dune"), "update dune")

	require.Equal(t, []string{`Updated book "Dune".`}, got)
	assert.Equal(t, 1966, store.books[0].Year)
	assert.Equal(t, "Sci-Fi", store.books[0].Genre)
	assert.Equal(t, "b1", store.books[0].ID)
}

func TestEngineUpdateAmbiguousDoesNotMutate(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindUpdate, Criteria: intent.Criteria{
			Author:  "Frank Herbert",
			Changes: &intent.Changes{Genre: strp("Sci-Fi")},
		}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "update herbert"), "update herbert")

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Multiple books matched")
	assert.Equal(t, "Science Fiction", store.books[0].Genre)
	assert.Equal(t, "Science Fiction", store.books[1].Genre)
}

func TestEngineSearchAggregatesAndDedups(t *testing.T) {
	store := seededStore()
	// Two overlapping searches in one utterance report each book once.
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Author: "Frank Herbert"}},
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Title: "Dune"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "find herbert and dune"), "find herbert and dune")

	require.Len(t, got, 1)
	assert.Equal(t, "Found 2 book(s):\n- Dune by Frank Herbert (1965) [Science Fiction]\n- Dune Messiah by Frank Herbert (1969) [Science Fiction]", got[0])
}

func TestEngineAddIntoEmptyCollection(t *testing.T) {
	store := &memStore{}
	utterance := `Add book titled "Dune" by Frank Herbert published in 1965 of the genre Science Fiction`
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{
			Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", Year: intp(1965),
		}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), utterance), utterance)

	require.Equal(t, []string{"Added: Dune by Frank Herbert (1965) [Science Fiction]"}, got)
	require.Len(t, store.books, 1)
}

func TestEngineGreetingThenSearchOrder(t *testing.T) {
	// A two-intent classification replies in order: greeting first, then
	// the aggregated search report.
	e := NewEngine(seededStore(), stubResolver{intents: []intent.Intent{
		{Kind: intent.KindGreeting},
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Author: "Tolkien"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "hi, find tolkien"), "hi, find tolkien")

	require.Len(t, got, 2)
	assert.Equal(t, replyGreeting, got[0])
	assert.Equal(t, "Found 1 book(s):\n- The Hobbit by J.R.R. Tolkien (1937) [Fantasy]", got[1])
}

func TestEngineSearchNoMatches(t *testing.T) {
	e := NewEngine(seededStore(), stubResolver{intents: []intent.Intent{
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Genre: "Romance"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "find romance"), "find romance")

	require.Equal(t, []string{"No matching books found."}, got)
}

func TestEngineMutationVisibleToLaterIntent(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindAdd, Criteria: intent.Criteria{
			Title: "It", Author: "Stephen King", Genre: "Horror", Year: intp(1986),
		}},
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Author: "Stephen King"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "add then find"), "add then find")

	require.Len(t, got, 2)
	assert.Contains(t, got[1], "Found 1 book(s):")
	assert.Contains(t, got[1], "It by Stephen King (1986)")
}

func TestEngineFallsBackWhenResolverFails(t *testing.T) {
	e := NewEngine(seededStore(), stubResolver{err: errors.New("provider down")}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "Hello there"), "Hello there")

	require.Equal(t, []string{replyGreeting}, got)
}

func TestEngineFallbackMatchesHeuristicDirectly(t *testing.T) {
	utterance := "Find books by Frank Herbert"

	broken := NewEngine(seededStore(), stubResolver{err: errors.New("boom")}, nil)
	direct := NewEngine(seededStore(), intent.Heuristic{}, nil)

	assert.Equal(t,
		direct.HandleUtterance(context.Background(), utterance),
		broken.HandleUtterance(context.Background(), utterance))
}

func TestEngineConversationalIntents(t *testing.T) {
	tests := []struct {
		name string
		kind intent.Kind
		want string
	}{
		{"greeting", intent.KindGreeting, replyGreeting},
		{"capability", intent.KindCapabilityQuery, replyCapability},
		{"out of scope", intent.KindOutOfScope, replyOutOfScope},
		{"unrecognized", intent.KindUnrecognized, replyUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(seededStore(), stubResolver{intents: []intent.Intent{
				{Kind: tt.kind},
			}}, nil)
			got := replies(t, e.HandleUtterance(context.Background(), "x"), "x")
			require.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestEngineHelpTopics(t *testing.T) {
	tests := []struct {
		utterance string
		want      string
	}{
		{"help me add a book", helpAdd},
		{"how do I delete a book", helpDelete},
		{"help with update", helpUpdate},
		{"how does search work", helpSearch},
		{"help", replyCapability},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			e := NewEngine(seededStore(), stubResolver{intents: []intent.Intent{
				{Kind: intent.KindHelp},
			}}, nil)
			got := replies(t, e.HandleUtterance(context.Background(), tt.utterance), tt.utterance)
			require.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestEngineEmptyIntentList(t *testing.T) {
	e := NewEngine(seededStore(), stubResolver{}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "???"), "???")

	require.Equal(t, []string{replyUnrecognized}, got)
}

func TestEngineSnapshotLoadFailure(t *testing.T) {
	store := seededStore()
	store.listErr = errors.New("connection refused")
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindGreeting},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "hi"), "hi")

	// The load failure is reported but the turn still runs.
	require.Equal(t, []string{
		"Failed to load your books: connection refused",
		replyGreeting,
	}, got)
}

func TestEngineIntentFailureIsContained(t *testing.T) {
	store := seededStore()
	e := NewEngine(store, stubResolver{intents: []intent.Intent{
		{Kind: intent.KindDelete, Criteria: intent.Criteria{Title: "Neuromancer"}},
		{Kind: intent.KindSearch, Criteria: intent.Criteria{Title: "Dune"}},
	}}, nil)

	got := replies(t, e.HandleUtterance(context.Background(), "delete and find"), "delete and find")

	require.Len(t, got, 2)
	assert.Equal(t, "Book to delete not found.", got[0])
	assert.Contains(t, got[1], "Found 2 book(s):")
}
