package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sant0-9/bookpal/internal/config"
)

func testCohere(url string) *CohereProvider {
	return &CohereProvider{
		apiKey:     "test-key",
		model:      "command",
		baseURL:    url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCohereComplete(t *testing.T) {
	var gotReq cohereGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(cohereGenerateResponse{
			Generations: []struct {
				Text string `json:"text"`
			}{{Text: "  [{\"intent\": \"greeting\", \"data\": null}]\n"}},
		})
	}))
	defer srv.Close()

	c := testCohere(srv.URL)
	resp, err := c.Complete(context.Background(), &CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "classify"},
			{Role: "user", Content: "Message: hi\nOutput:"},
		},
		MaxTokens:   400,
		Temperature: 0.1,
		Stop:        []string{"Message:", "Output:"},
	})
	require.NoError(t, err)

	// Whitespace is stripped from the generation text.
	assert.Equal(t, `[{"intent": "greeting", "data": null}]`, resp.Content)

	// Messages flatten into one prompt for the generate endpoint.
	assert.Equal(t, "classify\n\nMessage: hi\nOutput:", gotReq.Prompt)
	assert.Equal(t, []string{"Message:", "Output:"}, gotReq.StopSequences)
	assert.Equal(t, 0.75, gotReq.P)
	assert.Equal(t, "NONE", gotReq.ReturnLikelihoods)
}

func TestCohereCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	c := testCohere(srv.URL)
	_, err := c.Complete(context.Background(), &CompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCoherePing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
		}))
		defer srv.Close()
		require.NoError(t, testCohere(srv.URL).Ping(context.Background()))
	})

	t.Run("bad key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()
		err := testCohere(srv.URL).Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid API key")
	})
}

func TestNewProviderFromConfig(t *testing.T) {
	t.Run("cohere", func(t *testing.T) {
		p, err := NewProvider(&config.Config{Provider: "cohere", APIKey: "k", Model: "command"})
		require.NoError(t, err)
		assert.Equal(t, "cohere", p.Name())
	})

	t.Run("missing key rejected", func(t *testing.T) {
		for _, name := range []string{"cohere", "openai", "groq", "openrouter"} {
			_, err := NewProvider(&config.Config{Provider: name})
			assert.Error(t, err, name)
		}
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		p, err := NewProvider(&config.Config{Provider: "ollama", Model: "llama3.1:8b"})
		require.NoError(t, err)
		assert.Equal(t, "ollama", p.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProvider(&config.Config{Provider: "bard"})
		assert.Error(t, err)
	})
}
