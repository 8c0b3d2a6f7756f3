// Package reports defines the pre-rendered report lookup C10's
// ReportsSubagent reads from, and the NoContentSentinel returned verbatim
// when a combination has no rendered report yet.
//
// Grounded on spec.md §3's Reports table and §4.10's Reports subagent
// description; the teacher has no document-registry equivalent (its
// valuation output is a live debate, never persisted as a document), so
// this is new rather than adapted.
package reports

import (
	"context"
	"time"
)

// Report is one rendered document row, unique per
// (bank, fiscal_year, quarter, report_type).
type Report struct {
	ID                int64
	BankID            int64
	BankName          string
	BankSymbol        string
	FiscalYear        int
	Quarter           int
	ReportType        string
	LocalFilepath     string
	S3DocumentName    string
	S3PDFName         string
	MarkdownContent   string
	ReportName        string
	ReportDescription string
	GeneratedAt       time.Time
	ExecutionID       string
}

// NoContentSentinel is emitted verbatim when no report exists for a
// requested combination (spec.md §4.10), matching the teacher's idiom of
// a typed sentinel constant rather than an empty string or error.
const NoContentSentinel = "*No content available for this report.*"

// DefaultReportType is the report_type the ReportsSubagent looks up when a
// combination's query intent doesn't name a specific variant. spec.md
// doesn't enumerate report_type values, so this is an Open Question
// decision: one canonical quarterly report per (bank, fiscal_year,
// quarter), with room for the ETL to register named variants later.
const DefaultReportType = "standard"

// Store resolves report rows. Implemented by C6's store.Gateway.
type Store interface {
	// GetReport looks up the report_type row for (bankID, fiscalYear,
	// quarter). Returns (nil, nil) if none exists — absence is an
	// ordinary outcome the subagent renders as NoContentSentinel, not a
	// failure.
	GetReport(ctx context.Context, bankID int64, fiscalYear, quarter int, reportType string) (*Report, error)

	// UpsertReport performs the idempotent DELETE-then-INSERT spec.md §6
	// describes, so re-running an ETL for an already-generated period
	// replaces rather than duplicates the row.
	UpsertReport(ctx context.Context, r Report) error
}
