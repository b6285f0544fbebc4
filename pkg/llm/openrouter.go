package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okonma/valet/pkg/chats/message"
	"go.uber.org/zap"
)

// DefaultBaseURL is the OpenRouter API root (no trailing slash).
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const completionsPath = "/chat/completions"

var _ Completer = (*Client)(nil)

// Client implements Completer against an OpenAI-compatible chat-completions
// endpoint (OpenRouter by default). The request payload is built as an open
// mapping so arbitrary call parameters pass through unchanged.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client      // Falls back to http.DefaultClient.
	Headers    map[string]string // Extra headers applied to every request.

	logger *zap.Logger // llm.client category.
	wire   *zap.Logger // llm.wire category: payload dumps at Debug.
}

// NewClient creates a Client for the given endpoint. An empty baseURL falls
// back to DefaultBaseURL; nil loggers disable logging.
func NewClient(baseURL, apiKey string, logger, wire *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if wire == nil {
		wire = zap.NewNop()
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		logger:  logger,
		wire:    wire,
	}
}

// --- response types ---

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
	Error   *apiError   `json:"error"`
}

type apiChoice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

// Complete sends the conversation and returns the assistant's reply text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	payload := make(map[string]any, len(req.Params)+2)
	for k, v := range req.Params {
		payload[k] = v
	}
	// The positional fields always win over a stray parameter of the same
	// name.
	payload["model"] = req.Model
	payload["messages"] = wireMessages(req.Messages)

	c.logger.Debug("sending chat completion request",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)))

	var resp apiResponse
	if err := c.postJSON(ctx, completionsPath, payload, &resp); err != nil {
		return "", fmt.Errorf("llm: %w", err)
	}

	// OpenRouter can return an error body with a 200 status.
	if resp.Error != nil {
		return "", fmt.Errorf("llm: api error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty choices in response")
	}

	c.logger.Debug("received chat completion response",
		zap.String("finish_reason", resp.Choices[0].FinishReason))

	return resp.Choices[0].Message.Content, nil
}

// wireMessages converts messages to their API shape, mapping roles to wire
// names (human -> user, ai -> assistant).
func wireMessages(msgs []message.Message) []map[string]string {
	out := make([]map[string]string, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]string{
			"role":    m.Role.Wire(),
			"content": m.Content,
		}
	}
	return out
}

// httpClient returns the configured client or http.DefaultClient.
func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// postJSON marshals payload, sends a POST with auth and custom headers,
// checks for a 2xx status, and unmarshals the response body into dest.
func (c *Client) postJSON(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	c.wire.Debug("request payload", zap.ByteString("body", body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.wire.Debug("response payload",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e apiResponse
		if json.Unmarshal(respBody, &e) == nil && e.Error != nil {
			return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(respBody))
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
