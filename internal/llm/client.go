package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/service"
)

// Client is a client for the Ollama generate API.
type Client struct {
	BaseURL     string
	Model       string
	Temperature float64
	NumPredict  int
	client      *http.Client
}

// NewClient creates a new generation client.
// timeout bounds the whole request; local models can take minutes, so callers
// should pass a generous value.
func NewClient(baseURL, model string, temperature float64, numPredict int, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: temperature,
		NumPredict:  numPredict,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateRequest represents the request payload for the generate API.
type GenerateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Options GenerateOptions `json:"options"`
	Stream  bool            `json:"stream"`
}

// GenerateOptions holds sampling parameters for generation.
type GenerateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// generateResponse represents one response object from the generate API.
// The Response field is a pointer so that a body lacking the field can be
// told apart from an empty response.
type generateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Generate sends a single-shot generation request and returns the trimmed
// response text. The endpoint may answer with one JSON object or with a
// newline-delimited stream of partial objects; both shapes are handled
// transparently. Malformed stream lines are skipped, not fatal.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/api/generate", c.BaseURL)

	payload := GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		Options: GenerateOptions{
			Temperature: c.Temperature,
			NumPredict:  c.NumPredict,
		},
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send generate request: %v", service.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: generate bad status %d: %s", service.ErrUpstream, resp.StatusCode, string(raw))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read generate response: %v", service.ErrUpstream, err)
	}

	// Whole body as one JSON object first.
	var single generateResponse
	if err := json.Unmarshal(raw, &single); err == nil && single.Response != nil {
		return strings.TrimSpace(*single.Response), nil
	}

	// Fall back to newline-delimited partial objects.
	return parseStreamBody(raw), nil
}

// parseStreamBody accumulates response fragments from a newline-delimited
// JSON stream until a done-flagged line or end of input.
func parseStreamBody(raw []byte) string {
	var text strings.Builder

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		var part generateResponse
		if err := json.Unmarshal([]byte(line), &part); err != nil {
			continue
		}

		if part.Response != nil {
			text.WriteString(*part.Response)
		}
		if part.Done {
			break
		}
	}

	return strings.TrimSpace(text.String())
}
