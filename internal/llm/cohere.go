package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type CohereProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewCohereProvider(apiKey, model string) *CohereProvider {
	if model == "" {
		model = "command"
	}
	return &CohereProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.cohere.ai/v1",
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (c *CohereProvider) Name() string {
	return "cohere"
}

func (c *CohereProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot connect to Cohere API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 {
		return fmt.Errorf("invalid API key")
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("Cohere API error: status %d", resp.StatusCode)
	}

	return nil
}

type cohereGenerateRequest struct {
	Model             string   `json:"model,omitempty"`
	Prompt            string   `json:"prompt"`
	MaxTokens         int      `json:"max_tokens,omitempty"`
	Temperature       float64  `json:"temperature"`
	K                 int      `json:"k"`
	P                 float64  `json:"p"`
	StopSequences     []string `json:"stop_sequences,omitempty"`
	ReturnLikelihoods string   `json:"return_likelihoods,omitempty"`
}

type cohereGenerateResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
	Message string `json:"message,omitempty"`
}

func (c *CohereProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	apiReq := cohereGenerateRequest{
		Model:             model,
		Prompt:            flattenMessages(req.Messages),
		MaxTokens:         req.MaxTokens,
		Temperature:       req.Temperature,
		K:                 0,
		P:                 0.75,
		StopSequences:     req.Stop,
		ReturnLikelihoods: "NONE",
	}

	body, _ := json.Marshal(apiReq)

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/generate",
		bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Cohere request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Cohere error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp cohereGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Generations) == 0 {
		return nil, fmt.Errorf("no response from Cohere")
	}

	return &CompletionResponse{
		Content: strings.TrimSpace(apiResp.Generations[0].Text),
		Model:   model,
	}, nil
}

// flattenMessages joins chat messages into a single completion prompt for
// the generate endpoint, which has no role structure.
func flattenMessages(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n\n")
}
