// Package etl implements C11: the shared batch extraction framework
// C12's five report ETLs (call summary, key themes, CM/WM readthrough,
// bank earnings report) all build on.
//
// Grounded on the teacher's pkg/core/pipeline.PipelineOrchestrator phase
// structure (ingest -> extract -> validate -> synthesize -> analyze ->
// persist), generalized from single-company SEC-filing extraction to
// spec.md §4.11's bank x period x category extraction.
package etl

import (
	"context"
	"time"
)

// Tier selects which model size a task runs on, per spec.md §6's
// {small,medium,large} model configuration.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// BankPeriod is one (institution, fiscal_year, quarter) target an ETL
// run processes, mirroring pipeline.Combination's shape at the batch
// layer.
type BankPeriod struct {
	BankID     int64
	BankName   string
	BankSymbol string
	FiscalYear int
	Quarter    int
}

// CategoryTemplate is one row of the six-column canonical category
// shape spec.md §4.11 describes, loaded from YAML, CSV, or XLSX.
type CategoryTemplate struct {
	Category       string `yaml:"category"`
	Description    string `yaml:"description"`
	CategoryGroup  string `yaml:"category_group"`
	ContentType    string `yaml:"content_type"` // e.g. "qualitative", "quantitative"
	SourcePriority string `yaml:"source_priority"`
	Notes          string `yaml:"notes"`
}

// Statement is one extracted category statement (spec.md §4.11 step 4).
type Statement struct {
	Category          string
	Statement         string
	RelevanceScore    int
	CategoryGroup     *string
	QAID              *string
	SignificanceScore *int
	Rejected          bool
	RejectionReason   *string
	Source            string // "RTS" | "Transcript", populated by the bank-earnings second pass
}

// ObjectStore uploads rendered document bytes, modeled as a narrow
// external collaborator per spec.md §1's Non-goals (the object storage
// backend itself is out of scope). Grounded on the teacher's
// ContentFetcher interface-for-external-collaborator idiom
// (pkg/core/pipeline/orchestrator.go).
type ObjectStore interface {
	Upload(ctx context.Context, key string, content []byte) (url string, err error)
}

// DocumentSection is one subtitled block of a rendered report.
type DocumentSection struct {
	Title      string
	Statements []Statement
}

// DocumentPlan is the structured table-of-sections handed to the
// external DOCXRenderer (spec.md §1 Non-goal: the renderer itself is out
// of scope; Aegis only builds the plan it consumes).
type DocumentPlan struct {
	BankName    string
	BankSymbol  string
	FiscalYear  int
	Quarter     int
	ReportTitle string
	Overview    string
	Sections    []DocumentSection
	GeneratedAt time.Time
}

// Empty reports whether the plan has no renderable content, the
// non-emptiness check step 6 of spec.md §4.11 requires before handing
// the plan to DOCXRenderer.
func (p DocumentPlan) Empty() bool {
	if p.Overview != "" {
		return false
	}
	for _, s := range p.Sections {
		if len(s.Statements) > 0 {
			return false
		}
	}
	return true
}

// DOCXRenderer renders a DocumentPlan to document bytes and a file
// extension, modeled as an external collaborator per spec.md §1's
// Non-goals ("the DOCX renderer" is out of scope).
type DOCXRenderer interface {
	Render(ctx context.Context, plan DocumentPlan) (content []byte, ext string, err error)
}
