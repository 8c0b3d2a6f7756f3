package etl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/llm"
	"aegis/pkg/core/monitor"
	"aegis/pkg/core/obslog"
	"aegis/pkg/core/prompt"
	"aegis/pkg/core/reports"
	"aegis/pkg/core/retrieval"
)

// extractionArgs is the tool call's argument shape for one category
// extraction call: the model returns zero or more statements for the
// category it was asked about.
type extractionArgs struct {
	Statements []struct {
		Statement         string  `json:"statement"`
		RelevanceScore    int     `json:"relevance_score"`
		SignificanceScore *int    `json:"significance_score"`
		QAID              *string `json:"qa_id"`
		Rejected          bool    `json:"rejected"`
		RejectionReason   *string `json:"rejection_reason"`
	} `json:"statements"`
}

// Definition is the thin, per-ETL configuration C12's five report ETLs
// supply to the shared Runner: which prompt drives extraction, which
// category template applies, and how the extracted statements become a
// rendered document. Each C12 package builds exactly one Definition.
type Definition struct {
	Name             string
	PromptName       string
	CategoryTemplate []CategoryTemplate
	Tier             Tier
	Renderer         DOCXRenderer
	ReportType       string

	// BuildPlan assembles a DocumentPlan from the statements extracted for
	// one bank period. The default (nil) groups statements by Category in
	// template order; key_themes/cm_readthrough/wm_readthrough/
	// bank_earnings_report supply their own to add theme sections, subtitle
	// rows, an overview, or the items-of-note second pass.
	BuildPlan func(period BankPeriod, statements []Statement) DocumentPlan
}

// Runner executes C11's shared batch extraction pipeline (spec.md §4.11
// steps 1-8) for one Definition across many bank periods: per-bank fan-out
// bounded by TierConfig.MaxConcurrent, C7 retrieval feeding a C5-rendered
// extraction prompt through C4's CompleteWithTools, a rendered DocumentPlan
// persisted via ObjectStore + the reports store, and monitor entries per
// bank period for the extraction and persistence steps.
//
// Grounded on the teacher's pkg/core/pipeline.PipelineOrchestrator phase
// structure (ingest -> extract -> validate -> synthesize -> analyze ->
// persist), generalized from single-filing extraction to bank x period x
// category batch extraction.
type Runner struct {
	Connectors *llm.Registry
	Prompts    *prompt.Registry
	Engine     *retrieval.Engine
	Reports    reports.Store
	Objects    ObjectStore
	Monitor    *monitor.Monitor
	TierConfig *TierConfig
}

// RunResult summarizes one bank period's outcome.
type RunResult struct {
	Period     BankPeriod
	Statements []Statement
	ObjectURL  string
	Err        error
}

// Run extracts, renders, and persists one report per period in periods,
// fanning out across periods with a concurrency bound of
// def.Tier-resolved TierConfig.MaxConcurrent (default 5, spec.md §5).
func (r *Runner) Run(ctx context.Context, executionID string, def Definition, periods []BankPeriod) []RunResult {
	r.Monitor.InitializeExecution(executionID)

	results := make([]RunResult, len(periods))
	limit := r.TierConfig.MaxConcurrent
	if limit <= 0 {
		limit = 5
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, period := range periods {
		i, period := i, period
		g.Go(func() error {
			results[i] = r.runOne(gctx, executionID, def, period)
			return nil
		})
	}
	_ = g.Wait()

	posted, err := r.Monitor.PostEntries(ctx)
	if err != nil {
		obslog.Error("etl.runner.post_entries_failed", "etl", def.Name, "error", err.Error())
	} else {
		obslog.Info("etl.runner.complete", "etl", def.Name, "periods", len(periods), "entries_posted", posted)
	}

	return results
}

func (r *Runner) runOne(ctx context.Context, executionID string, def Definition, period BankPeriod) RunResult {
	start := time.Now()
	stage := "etl." + def.Name

	statements, err := r.extractAll(ctx, def, period)
	if err != nil {
		r.Monitor.AddEntry(executionID, stage+".extract", "error", time.Since(start), map[string]any{
			"bank_symbol": period.BankSymbol, "fiscal_year": period.FiscalYear, "quarter": period.Quarter,
		})
		return RunResult{Period: period, Err: err}
	}
	r.Monitor.AddEntry(executionID, stage+".extract", "completed", time.Since(start), map[string]any{
		"bank_symbol": period.BankSymbol, "statement_count": len(statements),
	})

	plan := buildDocumentPlan(def, period, statements)
	if plan.Empty() {
		return RunResult{Period: period, Statements: statements}
	}

	content, ext, err := def.Renderer.Render(ctx, plan)
	if err != nil {
		return RunResult{Period: period, Statements: statements, Err: apperr.Upstream(stage+".render", "document render failed", err)}
	}

	url, err := r.persist(ctx, def, period, content, ext)
	if err != nil {
		return RunResult{Period: period, Statements: statements, Err: err}
	}

	r.Monitor.AddEntry(executionID, stage+".persist", "completed", time.Since(start), map[string]any{
		"bank_symbol": period.BankSymbol, "object_url": url,
	})
	return RunResult{Period: period, Statements: statements, ObjectURL: url}
}

// extractAll runs one extraction call per applicable category in
// def.CategoryTemplate against period's transcript content.
func (r *Runner) extractAll(ctx context.Context, def Definition, period BankPeriod) ([]Statement, error) {
	content, err := r.transcriptContent(ctx, period)
	if err != nil {
		return nil, err
	}

	conn, err := r.Connectors.Get(r.TierConfig.ModelFor(def.Tier))
	if err != nil {
		return nil, err
	}

	var all []Statement
	for _, cat := range def.CategoryTemplate {
		stmts, err := r.extractCategory(ctx, conn, def, period, cat, content)
		if err != nil {
			return nil, err
		}
		all = append(all, stmts...)
	}
	return all, nil
}

// transcriptContent concatenates the MD and QA sections of period's
// transcript into one flat string for the extraction prompt's
// {transcript_content} placeholder.
func (r *Runner) transcriptContent(ctx context.Context, period BankPeriod) (string, error) {
	scope := retrieval.Scope{InstitutionID: period.BankID, FiscalYear: period.FiscalYear, Quarter: period.Quarter}

	md, err := r.Engine.FullSection(ctx, scope, retrieval.SectionMD)
	if err != nil {
		return "", apperr.Upstream("etl.transcript_content", "failed to retrieve MD section", err)
	}
	qa, err := r.Engine.FullSection(ctx, scope, retrieval.SectionQA)
	if err != nil {
		return "", apperr.Upstream("etl.transcript_content", "failed to retrieve QA section", err)
	}
	return retrieval.MarkGaps(append(md, qa...)), nil
}

func (r *Runner) extractCategory(ctx context.Context, conn llm.Connector, def Definition, period BankPeriod,
	cat CategoryTemplate, transcriptContent string) ([]Statement, error) {

	rec, err := r.Prompts.GetLocal(def.PromptName)
	if err != nil {
		return nil, err
	}
	composed, err := r.Prompts.ComposeSystemPrompt(def.PromptName)
	if err != nil {
		return nil, err
	}
	user, err := prompt.RenderUser(rec, &prompt.Context{Variables: map[string]any{
		"bank_name":          period.BankName,
		"fiscal_year":        period.FiscalYear,
		"quarter":            period.Quarter,
		"transcript_content": transcriptContent,
		"categories_list":    cat.Category,
		"content_type":       cat.ContentType,
	}})
	if err != nil {
		return nil, err
	}
	schema, err := prompt.ToolSchema(rec)
	if err != nil {
		return nil, err
	}

	req := llm.CompletionRequest{
		SystemPrompt: composed.SystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: user}},
		Temperature:  r.TierConfig.Temperature,
		MaxTokens:    r.TierConfig.MaxTokens,
		Tools:        []llm.ToolDefinition{{Name: def.PromptName, Parameters: schema}},
	}

	comp, err := conn.CompleteWithTools(ctx, req)
	if err != nil {
		return nil, apperr.Upstream("etl."+def.Name+".extract", "model call failed for category "+cat.Category, err)
	}
	if len(comp.ToolCalls) == 0 {
		return nil, nil
	}

	var args extractionArgs
	if err := decodeExtractionArgs(comp.ToolCalls[0].Arguments, &args); err != nil {
		return nil, apperr.Content("etl."+def.Name+".extract", "extraction arguments did not match the expected shape", err)
	}

	group := cat.CategoryGroup
	out := make([]Statement, 0, len(args.Statements))
	for _, s := range args.Statements {
		stmt := Statement{
			Category:          cat.Category,
			Statement:         s.Statement,
			RelevanceScore:    s.RelevanceScore,
			QAID:              s.QAID,
			SignificanceScore: s.SignificanceScore,
			Rejected:          s.Rejected,
			RejectionReason:   s.RejectionReason,
		}
		if group != "" {
			stmt.CategoryGroup = &group
		}
		out = append(out, stmt)
	}
	return out, nil
}

// buildDocumentPlan delegates to def.BuildPlan if supplied, otherwise
// falls back to grouping statements by Category in template order.
func buildDocumentPlan(def Definition, period BankPeriod, statements []Statement) DocumentPlan {
	if def.BuildPlan != nil {
		return def.BuildPlan(period, statements)
	}

	byCategory := make(map[string][]Statement)
	for _, s := range statements {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	var sections []DocumentSection
	for _, cat := range def.CategoryTemplate {
		stmts := byCategory[cat.Category]
		if len(stmts) == 0 {
			continue
		}
		sort.SliceStable(stmts, func(i, j int) bool { return stmts[i].RelevanceScore > stmts[j].RelevanceScore })
		sections = append(sections, DocumentSection{Title: cat.Category, Statements: stmts})
	}

	return DocumentPlan{
		BankName:    period.BankName,
		BankSymbol:  period.BankSymbol,
		FiscalYear:  period.FiscalYear,
		Quarter:     period.Quarter,
		ReportTitle: fmt.Sprintf("%s — %s Q%d", period.BankName, def.Name, period.Quarter),
		Sections:    sections,
		GeneratedAt: time.Now(),
	}
}

// persist uploads the rendered document and records it in the reports
// store with an idempotent DELETE-then-INSERT, so re-running an ETL for
// an already-generated period replaces rather than duplicates the row.
func (r *Runner) persist(ctx context.Context, def Definition, period BankPeriod, content []byte, ext string) (string, error) {
	key := objectKey(period, content, ext)
	url, err := r.Objects.Upload(ctx, key, content)
	if err != nil {
		return "", apperr.Upstream("etl."+def.Name+".persist", "object upload failed", err)
	}

	reportType := def.ReportType
	if reportType == "" {
		reportType = reports.DefaultReportType
	}

	if err := r.Reports.UpsertReport(ctx, reports.Report{
		BankID:         period.BankID,
		BankName:       period.BankName,
		BankSymbol:     period.BankSymbol,
		FiscalYear:     period.FiscalYear,
		Quarter:        period.Quarter,
		ReportType:     reportType,
		S3DocumentName: key,
		ReportName:     def.Name,
		GeneratedAt:    time.Now(),
	}); err != nil {
		obslog.Error("etl.runner.report_upsert_failed", "etl", def.Name, "bank_symbol", period.BankSymbol, "stage", upsertStage(err), "error", err.Error())
		return url, apperr.Upstream("etl."+def.Name+".persist", "report upsert failed after successful upload", err)
	}

	return url, nil
}

// upsertStage extracts which half of UpsertReport's DELETE+INSERT pair
// failed, from the *apperr.Error stage label store.reports.UpsertReport
// sets ("store.upsert_report.delete" or "store.upsert_report.insert").
// Falls back to "unknown" for any other error shape.
func upsertStage(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return "unknown"
}

// objectKey builds the <bank_symbol>_<fy>_<q>_<8hex>.<ext> key spec.md
// §4.11 step 7 describes, where the 8 hex characters are the first 8 hex
// digits of content's SHA-256 hash.
func objectKey(period BankPeriod, content []byte, ext string) string {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("%s_%d_q%d_%s.%s", period.BankSymbol, period.FiscalYear, period.Quarter, hash, ext)
}

// decodeExtractionArgs re-marshals a tool call's already-parsed Arguments
// map into a typed struct, the same round-trip pipeline.DecodeArgs
// performs for router/clarifier/planner tool calls.
func decodeExtractionArgs(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return apperr.Invariant("etl.extract", "failed to re-marshal tool call arguments", err)
	}
	return json.Unmarshal(raw, out)
}
