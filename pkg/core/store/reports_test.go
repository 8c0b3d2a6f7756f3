package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/reports"
)

// fakeTx implements pgx.Tx by embedding the (nil) interface for methods
// UpsertReport never calls and overriding the three it does.
type fakeTx struct {
	pgx.Tx
	execFn      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFn(ctx, sql, args...)
}
func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return f.commitErr
}
func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

func TestUpsertReportRunsDeleteAndInsertInOneTransaction(t *testing.T) {
	var statements []string
	tx := &fakeTx{execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		statements = append(statements, sql)
		return pgconn.NewCommandTag("OK"), nil
	}}
	g := &Gateway{pool: &fakeQuerier{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}}

	err := g.UpsertReport(context.Background(), reports.Report{BankID: 1, FiscalYear: 2025, Quarter: 2, ReportType: "call_summary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) != 2 {
		t.Fatalf("expected delete then insert, got %d statements", len(statements))
	}
	if !tx.committed {
		t.Fatal("expected transaction to be committed on success")
	}
	if tx.rolledBack {
		t.Fatal("did not expect a rollback on success")
	}
}

func TestUpsertReportRollsBackAndLabelsInsertStageOnFailure(t *testing.T) {
	calls := 0
	tx := &fakeTx{execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		calls++
		if calls == 1 {
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		return pgconn.CommandTag{}, errors.New("constraint violation")
	}}
	g := &Gateway{pool: &fakeQuerier{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}}

	err := g.UpsertReport(context.Background(), reports.Report{BankID: 1, FiscalYear: 2025, Quarter: 2, ReportType: "call_summary"})
	if err == nil {
		t.Fatal("expected error from failed insert")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Stage != "store.upsert_report.insert" {
		t.Fatalf("expected insert-stage error, got %v", err)
	}
	if !tx.rolledBack {
		t.Fatal("expected rollback after insert failure")
	}
	if tx.committed {
		t.Fatal("did not expect a commit after insert failure")
	}
}

func TestUpsertReportLabelsDeleteStageOnFailure(t *testing.T) {
	tx := &fakeTx{execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}}
	g := &Gateway{pool: &fakeQuerier{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	}}

	err := g.UpsertReport(context.Background(), reports.Report{BankID: 1, FiscalYear: 2025, Quarter: 2, ReportType: "call_summary"})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Stage != "store.upsert_report.delete" {
		t.Fatalf("expected delete-stage error, got %v", err)
	}
}
