package prompt

// Names holds every well-known LayerLocal prompt name Aegis ships with, so
// call sites reference Names.Router rather than a bare string literal —
// the same purpose the teacher's PromptIDs struct served for its
// debate/extraction/qualitative/assistant prompt IDs.
var Names = struct {
	GlobalContext string
	FiscalContext string

	Router     string
	Clarifier  string
	Planner    string
	Summarizer string

	SubagentTranscripts  string
	SubagentBenchmarking string
	SubagentReports      string
	SubagentRts          string // Regulatory filings (Research The Street)

	ETLCallSummary         string
	ETLKeyThemes           string
	ETLCMReadthrough       string
	ETLWMReadthrough       string
	ETLBankEarningsReport  string
	ETLOverviewCombination string
}{
	GlobalContext: "global_context",
	FiscalContext: "fiscal_context",

	Router:     "router",
	Clarifier:  "clarifier",
	Planner:    "planner",
	Summarizer: "summarizer",

	SubagentTranscripts:  "subagent.transcripts",
	SubagentBenchmarking: "subagent.benchmarking",
	SubagentReports:      "subagent.reports",
	SubagentRts:          "subagent.rts",

	ETLCallSummary:         "etl.call_summary",
	ETLKeyThemes:           "etl.key_themes",
	ETLCMReadthrough:       "etl.cm_readthrough",
	ETLWMReadthrough:       "etl.wm_readthrough",
	ETLBankEarningsReport:  "etl.bank_earnings_report",
	ETLOverviewCombination: "etl.bank_earnings_report.overview_combination",
}
