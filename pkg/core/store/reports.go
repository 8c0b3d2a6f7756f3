package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/reports"
)

// GetReport implements reports.Store. Absence is reported as (nil, nil)
// per the interface contract — the ReportsSubagent renders
// reports.NoContentSentinel for that outcome rather than treating it as a
// failure.
func (g *Gateway) GetReport(ctx context.Context, bankID int64, fiscalYear, quarter int, reportType string) (*reports.Report, error) {
	const sql = `
		SELECT id, bank_id, bank_name, bank_symbol, fiscal_year, quarter, report_type,
		       local_filepath, s3_document_name, s3_pdf_name, markdown_content,
		       report_name, report_description, generated_at, execution_id
		FROM reports
		WHERE bank_id = $1 AND fiscal_year = $2 AND quarter = $3 AND report_type = $4`

	var r reports.Report
	var s3PDFName, markdown *string
	err := g.queryRow(ctx, sql, []any{bankID, fiscalYear, quarter, reportType}, func(row pgx.Row) error {
		return row.Scan(&r.ID, &r.BankID, &r.BankName, &r.BankSymbol, &r.FiscalYear, &r.Quarter, &r.ReportType,
			&r.LocalFilepath, &r.S3DocumentName, &s3PDFName, &markdown,
			&r.ReportName, &r.ReportDescription, &r.GeneratedAt, &r.ExecutionID)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s3PDFName != nil {
		r.S3PDFName = *s3PDFName
	}
	if markdown != nil {
		r.MarkdownContent = *markdown
	}
	return &r, nil
}

// UpsertReport performs the idempotent DELETE-then-INSERT spec.md §6
// requires: a re-run for an already-generated period replaces the row
// rather than violating the unique (bank, fiscal_year, quarter,
// report_type) constraint or duplicating it. The pair runs inside a
// single transaction (spec.md's "bounded transactions") so a failed
// INSERT never leaves the row deleted with nothing to replace it; on
// failure the caller's error carries a "stage" identifying which half
// broke.
func (g *Gateway) UpsertReport(ctx context.Context, r reports.Report) error {
	return g.WithTx(ctx, func(tx *Gateway) error {
		const deleteSQL = `
			DELETE FROM reports
			WHERE bank_id = $1 AND fiscal_year = $2 AND quarter = $3 AND report_type = $4`
		if _, err := tx.exec(ctx, deleteSQL, r.BankID, r.FiscalYear, r.Quarter, r.ReportType); err != nil {
			return apperr.Upstream("store.upsert_report.delete", "delete half of upsert failed", err)
		}

		const insertSQL = `
			INSERT INTO reports
				(bank_id, bank_name, bank_symbol, fiscal_year, quarter, report_type,
				 local_filepath, s3_document_name, s3_pdf_name, markdown_content,
				 report_name, report_description, generated_at, execution_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
		if _, err := tx.exec(ctx, insertSQL,
			r.BankID, r.BankName, r.BankSymbol, r.FiscalYear, r.Quarter, r.ReportType,
			r.LocalFilepath, r.S3DocumentName, r.S3PDFName, r.MarkdownContent,
			r.ReportName, r.ReportDescription, r.GeneratedAt, r.ExecutionID); err != nil {
			return apperr.Upstream("store.upsert_report.insert", "insert half of upsert failed", err)
		}
		return nil
	})
}
