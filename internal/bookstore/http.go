package bookstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sant0-9/bookpal/internal/book"
)

// HTTPStore talks to a remote books API over REST:
// GET/POST on <base>, PUT/DELETE on <base>/<id>.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPStore creates a store client for the given base URL, e.g.
// http://localhost:4540/api/books.
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *HTTPStore) List(ctx context.Context) ([]book.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("book store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var books []book.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("decode book list: %w", err)
	}
	return books, nil
}

func (s *HTTPStore) Create(ctx context.Context, b book.Book) (book.Book, error) {
	b.ID = ""
	var created book.Book
	if err := s.send(ctx, http.MethodPost, s.baseURL, b, &created); err != nil {
		return book.Book{}, err
	}
	return created, nil
}

func (s *HTTPStore) Update(ctx context.Context, id string, b book.Book) (book.Book, error) {
	var updated book.Book
	if err := s.send(ctx, http.MethodPut, s.baseURL+"/"+id, b, &updated); err != nil {
		return book.Book{}, err
	}
	return updated, nil
}

func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/"+id, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("book store unreachable: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (s *HTTPStore) send(ctx context.Context, method, url string, b book.Book, out *book.Book) error {
	body, err := json.Marshal(b)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("book store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode book: %w", err)
	}
	return nil
}

// checkStatus turns a non-2xx response into an error, preferring the
// server-provided message text over a generic status string.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("%s", apiErr.Message)
	}
	return fmt.Errorf("book store returned status %d", resp.StatusCode)
}
