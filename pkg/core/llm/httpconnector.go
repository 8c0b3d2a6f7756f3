package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/utils"
)

// HTTPConnector implements Connector against any OpenAI-compatible chat
// completions endpoint (DeepSeek, Qwen/DashScope-compatible mode, a local
// vLLM server, etc). It generalizes the teacher's DeepSeekProvider
// (pkg/core/llm/deepseek.go) from a single hardcoded host into a
// configurable backend, so the same request-shaping logic serves any
// secondary model Aegis is pointed at via settings.ETLSettings.Model.
//
// It implements Complete and CompleteWithTools over the plain REST API;
// Stream and the embedding operations are not offered by every
// OpenAI-compatible host, so they return a KindUpstream error naming the
// unsupported operation rather than silently degrading.
type HTTPConnector struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Connector = (*HTTPConnector)(nil)

// NewHTTPConnector builds a connector against baseURL (e.g.
// "https://api.deepseek.com/chat/completions") authenticated with a bearer
// apiKey, defaulting to model when a request doesn't override it.
func NewHTTPConnector(baseURL, apiKey, model string, httpClient *http.Client) (*HTTPConnector, error) {
	if baseURL == "" {
		return nil, apperr.Config("llm.http_connector", "base URL is empty", nil)
	}
	if apiKey == "" {
		return nil, apperr.Config("llm.http_connector", "API key is empty", nil)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPConnector{baseURL: baseURL, apiKey: apiKey, model: model, httpClient: httpClient}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream      bool          `json:"stream"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *HTTPConnector) buildRequest(req CompletionRequest, withTools bool) chatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	body := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	if withTools && len(req.Tools) > 0 {
		for _, t := range req.Tools {
			body.Tools = append(body.Tools, chatTool{
				Type: "function",
				Function: chatFunction{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
	}
	return body
}

func (c *HTTPConnector) post(ctx context.Context, body chatCompletionRequest) (*chatCompletionResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Invariant("llm.http_connector", "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Upstream("llm.http_connector", "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Upstream("llm.http_connector", "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("llm.http_connector", "failed to read response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream("llm.http_connector", fmt.Sprintf("status=%d body=%s", resp.StatusCode, string(respBody)), nil)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperr.Content("llm.http_connector", "failed to decode response JSON", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, apperr.Content("llm.http_connector", "response had no choices", nil)
	}
	return &parsed, nil
}

func (c *HTTPConnector) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	resp, err := c.post(ctx, c.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	return &Completion{Text: resp.Choices[0].Message.Content}, nil
}

func (c *HTTPConnector) CompleteWithTools(ctx context.Context, req CompletionRequest) (*Completion, error) {
	resp, err := c.post(ctx, c.buildRequest(req, true))
	if err != nil {
		return nil, err
	}
	choice := resp.Choices[0]
	completion := &Completion{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		var args map[string]any
		if raw := strings.TrimSpace(tc.Function.Arguments); raw != "" {
			// Tool-call arguments arrive as a raw JSON string per the
			// OpenAI wire format; SmartParse tolerates the stray leading
			// newlines and minor formatting slips observed from some
			// backends before falling back to a hard error.
			if _, err := utils.SmartParse(raw, &args); err != nil {
				return nil, apperr.Content("llm.http_connector", "tool call arguments were not valid JSON", err)
			}
		}
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	return completion, nil
}

func (c *HTTPConnector) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	return nil, apperr.Upstream("llm.http_connector", "streaming is not supported by this backend", nil)
}

func (c *HTTPConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, apperr.Upstream("llm.http_connector", "embeddings are not supported by this backend", nil)
}

func (c *HTTPConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, apperr.Upstream("llm.http_connector", "embeddings are not supported by this backend", nil)
}
