package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
)

const (
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"
	embeddingDimensions   = 3072
	maxEmbedBatchSize     = 100
)

// GeminiConnector implements Connector against Google's Gemini API via the
// official genai SDK. Generation follows the teacher's GeminiProvider
// (system instruction wiring, JSON-mode heuristic, citation extraction from
// GroundingMetadata); Embed/EmbedBatch follow the batching-and-chunking
// idiom of theRebelliousNerd-codenerd's GenAIEngine.
type GeminiConnector struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

var _ Connector = (*GeminiConnector)(nil)

// NewGeminiConnector builds a connector bound to apiKey. model/embeddingModel
// empty strings fall back to sensible defaults.
func NewGeminiConnector(ctx context.Context, apiKey, model, embeddingModel string) (*GeminiConnector, error) {
	if apiKey == "" {
		return nil, apperr.Config("llm.gemini", "API key is empty", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Config("llm.gemini", "failed to create genai client", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	return &GeminiConnector{client: client, model: model, embeddingModel: embeddingModel}, nil
}

func (c *GeminiConnector) resolveModel(req CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.model
}

func (c *GeminiConnector) buildConfig(req CompletionRequest) *genai.GenerateContentConfig {
	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	if req.JSONMode || jsonModeHeuristic(req) {
		cfg.ResponseMIMEType = "application/json"
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schemaFromMap(t.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return cfg
}

// jsonModeHeuristic mirrors the teacher's fallback: if JSONMode wasn't set
// explicitly but the prompt text mentions "json", request JSON output.
func jsonModeHeuristic(req CompletionRequest) bool {
	lower := strings.ToLower(req.SystemPrompt)
	for _, m := range req.Messages {
		lower += " " + strings.ToLower(m.Content)
	}
	return strings.Contains(lower, "json")
}

func schemaFromMap(params map[string]any) *genai.Schema {
	if params == nil {
		return nil
	}
	// The genai SDK's Schema is a typed struct; tool parameter schemas
	// arrive from the prompt registry as already-valid JSON Schema maps,
	// so we round-trip through its generic Type/Properties representation.
	return genai.SchemaFromJSONSchema(params)
}

func contentsFromMessages(messages []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}

func (c *GeminiConnector) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := c.resolveModel(req)
	cfg := c.buildConfig(req)

	result, err := c.client.Models.GenerateContent(ctx, model, contentsFromMessages(req.Messages), cfg)
	if err != nil {
		return nil, apperr.Upstream("llm.gemini.complete", "generateContent failed", err)
	}

	completion := &Completion{Text: result.Text()}
	completion.Citations = extractCitations(result)
	if len(completion.Citations) > 0 {
		completion.Text = fmt.Sprintf("%s\n\n**Sources:**\n%s", completion.Text, strings.Join(completion.Citations, "\n"))
	}
	return completion, nil
}

func (c *GeminiConnector) CompleteWithTools(ctx context.Context, req CompletionRequest) (*Completion, error) {
	model := c.resolveModel(req)
	cfg := c.buildConfig(req)

	result, err := c.client.Models.GenerateContent(ctx, model, contentsFromMessages(req.Messages), cfg)
	if err != nil {
		return nil, apperr.Upstream("llm.gemini.complete_with_tools", "generateContent failed", err)
	}

	completion := &Completion{Text: result.Text()}
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			if part.FunctionCall == nil {
				continue
			}
			completion.ToolCalls = append(completion.ToolCalls, ToolCall{
				ID:        fmt.Sprintf("call_%d", len(completion.ToolCalls)),
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
	}
	return completion, nil
}

func (c *GeminiConnector) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	model := c.resolveModel(req)
	cfg := c.buildConfig(req)

	out := make(chan StreamChunk, 16)

	iter := c.client.Models.GenerateContentStream(ctx, model, contentsFromMessages(req.Messages), cfg)

	go func() {
		defer close(out)
		for result, err := range iter {
			if err != nil {
				obslog.Error("llm.gemini.stream_error", "error", err.Error())
				out <- StreamChunk{Err: apperr.Upstream("llm.gemini.stream", "stream iteration failed", err), Done: true}
				return
			}
			chunk := StreamChunk{Text: result.Text()}
			if len(result.Candidates) > 0 {
				for _, part := range result.Candidates[0].Content.Parts {
					if part.FunctionCall != nil {
						chunk.ToolCalls = append(chunk.ToolCalls, ToolCall{
							ID:        fmt.Sprintf("call_%d", len(chunk.ToolCalls)),
							Name:      part.FunctionCall.Name,
							Arguments: part.FunctionCall.Args,
						})
					}
				}
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
		out <- StreamChunk{Done: true}
	}()

	return out, nil
}

func extractCitations(result *genai.GenerateContentResponse) []string {
	if len(result.Candidates) == 0 {
		return nil
	}
	cand := result.Candidates[0]
	if cand.GroundingMetadata == nil {
		return nil
	}
	var citations []string
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		if chunk.Web != nil {
			citations = append(citations, fmt.Sprintf("[%s](%s)", chunk.Web.Title, chunk.Web.URI))
		}
	}
	return citations
}

func (c *GeminiConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embedChunk(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, apperr.Upstream("llm.gemini.embed", "no embeddings returned", nil)
	}
	return vectors[0], nil
}

func (c *GeminiConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) <= maxEmbedBatchSize {
		return c.embedChunk(ctx, texts)
	}

	all := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatchSize {
		end := start + maxEmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		chunk, err := c.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d] failed: %w", start, end, err)
		}
		all = append(all, chunk...)
	}
	return all, nil
}

func (c *GeminiConnector) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	dims := int32(embeddingDimensions)
	result, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, apperr.Upstream("llm.gemini.embed", "embedContent failed", err)
	}

	out := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}
