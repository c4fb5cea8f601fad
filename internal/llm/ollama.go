package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const defaultPort = "11434"

const extractPrompt = "Extract the most important keywords from this query. Return only the keywords, one per line, with no additional text or explanation:\n\n%s"

const answerPrompt = "Use the following information to answer the query. Only use the provided information and don't make up facts.\n\nINFORMATION:\n%s\n\nQUERY:\n%s\n\nANSWER:"

// OllamaClient calls the Ollama /api/generate endpoint to pull search terms
// out of a query and to answer it from retrieved notes.
type OllamaClient struct {
	baseURL          string
	model            string
	maxContextLength int
	client           *http.Client
}

// NewOllamaClient creates a client for the Ollama instance at endpoint.
// The endpoint may omit the scheme and port ("localhost" is
// http://localhost:11434). Context passed to Generate is cut to
// maxContextLength bytes.
func NewOllamaClient(endpoint, model string, maxContextLength int) (*OllamaClient, error) {
	baseURL, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return &OllamaClient{
		baseURL:          baseURL,
		model:            model,
		maxContextLength: maxContextLength,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// BaseURL returns the normalized endpoint.
func (c *OllamaClient) BaseURL() string { return c.baseURL }

// Model returns the configured model name.
func (c *OllamaClient) Model() string { return c.model }

// NormalizeEndpoint turns a configured endpoint into a base URL with scheme
// and port and no trailing slash.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return "", fmt.Errorf("ollama endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse ollama endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("ollama endpoint %q has no host", endpoint)
	}
	if u.Port() == "" {
		u.Host = u.Host + ":" + defaultPort
	}
	return strings.TrimRight(u.String(), "/"), nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// ExtractTerms asks the model for the keywords in query, one per line.
func (c *OllamaClient) ExtractTerms(ctx context.Context, query string) ([]string, error) {
	text, err := c.generate(ctx, fmt.Sprintf(extractPrompt, query))
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}
	return ParseTerms(text), nil
}

// ParseTerms splits a model response into trimmed, non-empty lines.
func ParseTerms(text string) []string {
	var terms []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			terms = append(terms, line)
		}
	}
	return terms
}

// Generate answers query using only the supplied context.
func (c *OllamaClient) Generate(ctx context.Context, query, notes string) (string, error) {
	notes = Truncate(notes, c.maxContextLength)
	text, err := c.generate(ctx, fmt.Sprintf(answerPrompt, notes, query))
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	return text, nil
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama generate returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return result.Response, nil
}
