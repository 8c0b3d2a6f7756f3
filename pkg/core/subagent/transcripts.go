package subagent

import (
	"context"
	"fmt"
	"time"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/conversation"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/pipeline"
	"aegis/pkg/core/prompt"
	"aegis/pkg/core/retrieval"
)

// TranscriptsSubagent answers one database's worth of combinations from
// earnings-call transcripts: a tool call picks one of C7's six retrieval
// methods (M0-M5), the chosen method runs against retrieval.Engine, and a
// second LLM call paraphrases the retrieved chunks into prose that never
// surfaces an internal identifier.
//
// Grounded on spec.md §4.10's transcripts subagent description and on C7
// (pkg/core/retrieval/engine.go) for the six retrieval methods themselves.
type TranscriptsSubagent struct {
	Connectors *llm.Registry
	Prompts    *prompt.Registry
	Engine     *retrieval.Engine
	Monitor    *monitor.Monitor
}

// methodChoice is the tool call's argument shape: the model names one of
// the six retrieval methods and supplies whichever parameters it needs.
type methodChoice struct {
	Method         string `json:"method"` // full_section | speaker_block | qa_group | chunk_neighborhood | category_similarity | vector_topk
	Section        string `json:"section"`
	SpeakerBlockID int    `json:"speaker_block_id"`
	QAGroupID      int    `json:"qa_group_id"`
	ChunkID        int64  `json:"chunk_id"`
	Radius         int    `json:"radius"`
	TopK           int    `json:"top_k"`
}

func (s *TranscriptsSubagent) Run(ctx context.Context, executionID string, conv *conversation.Conversation,
	combos []pipeline.Combination, basicIntent, fullIntent, databaseID string) (<-chan pipeline.Event, error) {

	e := newEmitter(databaseID, executionID, s.Monitor)
	conn, err := s.Connectors.Get("")
	if err != nil {
		return nil, err
	}

	go func() {
		defer e.close()
		for _, combo := range combos {
			s.runOne(ctx, conn, e, conv, combo, basicIntent, fullIntent)
		}
	}()
	return e.out, nil
}

func (s *TranscriptsSubagent) runOne(ctx context.Context, conn llm.Connector, e *emitter,
	conv *conversation.Conversation, combo pipeline.Combination, basicIntent, fullIntent string) {
	start := time.Now()

	chunks, err := s.retrieve(ctx, conn, conv, combo, basicIntent, fullIntent)
	if err != nil {
		e.errorf(fmt.Sprintf("%s transcript retrieval failed for %s: %v", e.name, combo.BankName, err))
		e.record("transcripts.retrieve", start, "error", 0)
		return
	}
	if len(chunks) == 0 {
		e.content(fmt.Sprintf("No transcript content was found for %s (%d Q%d).", combo.BankName, combo.FiscalYear, combo.Quarter))
		e.record("transcripts.retrieve", start, "completed", 0)
		return
	}

	text := retrieval.MarkGaps(chunks)
	prose, err := s.synthesize(ctx, conn, combo, fullIntent, text)
	if err != nil {
		e.errorf(fmt.Sprintf("%s synthesis failed for %s: %v", e.name, combo.BankName, err))
		e.record("transcripts.synthesize", start, "error", 0)
		return
	}
	if leaksIdentifiers(prose) {
		e.content(degradedNote)
		e.record("transcripts.synthesize", start, "degraded", len(degradedNote))
		return
	}
	e.content(prose)
	e.record("transcripts.synthesize", start, "completed", len(prose))
}

func (s *TranscriptsSubagent) retrieve(ctx context.Context, conn llm.Connector, conv *conversation.Conversation,
	combo pipeline.Combination, basicIntent, fullIntent string) ([]retrieval.Chunk, error) {

	req, err := pipeline.StageRequest(s.Prompts, conv, prompt.Names.SubagentTranscripts)
	if err != nil {
		return nil, err
	}
	req.Messages = append(req.Messages, llm.Message{
		Role: "system",
		Content: fmt.Sprintf("Institution: %s (%s). Period: FY%d Q%d. Basic intent: %s. Full intent: %s. %s",
			combo.BankName, combo.BankSymbol, combo.FiscalYear, combo.Quarter, basicIntent, fullIntent, combo.QueryIntent),
	})

	var choice methodChoice
	if err := pipeline.RunStage(ctx, conn, "transcripts.method_selection", req, &choice); err != nil {
		return nil, err
	}

	scope := scopeFor(combo)
	switch choice.Method {
	case "full_section":
		return s.Engine.FullSection(ctx, scope, retrieval.Section(choice.Section))
	case "speaker_block":
		return s.Engine.SpeakerBlock(ctx, scope, choice.SpeakerBlockID)
	case "qa_group":
		return s.Engine.QAGroup(ctx, scope, choice.QAGroupID)
	case "chunk_neighborhood":
		return s.Engine.ChunkNeighborhood(ctx, choice.ChunkID, choice.Radius)
	case "category_similarity", "vector_topk":
		embedding, err := conn.Embed(ctx, fullIntent)
		if err != nil {
			return nil, apperr.Upstream("transcripts.embed", "failed to embed query intent", err)
		}
		k := choice.TopK
		if k <= 0 {
			k = 10
		}
		if choice.Method == "category_similarity" {
			return s.Engine.CategorySimilarity(ctx, scope, embedding, k)
		}
		return s.Engine.VectorTopK(ctx, scope, embedding, k)
	default:
		return nil, apperr.Content("transcripts.method_selection", "model chose an unknown retrieval method: "+choice.Method, nil)
	}
}

func (s *TranscriptsSubagent) synthesize(ctx context.Context, conn llm.Connector, combo pipeline.Combination,
	fullIntent, retrievedText string) (string, error) {

	composed, err := s.Prompts.ComposeSystemPrompt(prompt.Names.SubagentTranscripts)
	if err != nil {
		return "", err
	}

	req := llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf(
				"Question intent: %s\n\nUsing only the transcript excerpts below, write prose that paraphrases "+
					"and quotes management and analyst remarks (e.g. \"management noted\", \"analysts asked\", "+
					"\"the CFO responded\"). Never mention chunk IDs, speaker block IDs, QA group IDs, or raw "+
					"section headers.\n\n%s", fullIntent, retrievedText)},
		},
	}
	comp, err := conn.Complete(ctx, req)
	if err != nil {
		return "", apperr.Upstream("transcripts.synthesize", "model call failed", err)
	}
	return comp.Text, nil
}
