package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeRow implements pgx.Row over a fixed slice of values, standing in for
// a live connection's QueryRow result in tests that never touch Postgres.
type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(dest, r.values)
}

// fakeRows implements pgx.Rows over an in-memory table of rows.
type fakeRows struct {
	rows []([]any)
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}
func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.pos-1])
}
func (r *fakeRows) Values() ([]any, error)     { return r.rows[r.pos-1], nil }
func (r *fakeRows) RawValues() [][]byte        { return nil }
func (r *fakeRows) Conn() *pgx.Conn            { return nil }

// scanInto copies each src value into the matching dest pointer, the same
// shape reflection-light assignment pgx itself performs for simple scalar
// and time.Time column types used across this package's tables.
func scanInto(dest []any, src []any) error {
	if len(dest) != len(src) {
		return errors.New("store_test: column count mismatch")
	}
	for i, d := range dest {
		if err := assign(d, src[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(dest, src any) error {
	switch d := dest.(type) {
	case *string:
		s, _ := src.(string)
		*d = s
	case **string:
		if src == nil {
			*d = nil
			return nil
		}
		s, _ := src.(string)
		*d = &s
	case *int:
		n, _ := src.(int)
		*d = n
	case *int64:
		n, _ := src.(int64)
		*d = n
	default:
		return errAssignUnsupported
	}
	return nil
}

var errAssignUnsupported = errors.New("store_test: unsupported assign target")

// fakeQuerier implements querier entirely in memory.
type fakeQuerier struct {
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	beginFn    func(ctx context.Context) (pgx.Tx, error)
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFn(ctx, sql, args...)
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRowFn(ctx, sql, args...)
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.queryFn(ctx, sql, args...)
}

func (f *fakeQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginFn != nil {
		return f.beginFn(ctx)
	}
	return nil, errors.New("fakeQuerier: Begin not configured")
}

func TestGuardQueryRejectsSprintfLeftover(t *testing.T) {
	if err := guardQuery("SELECT * FROM prompts WHERE name = '" + "%s" + "'"); err == nil {
		t.Fatal("expected guardQuery to reject a leftover %s verb")
	}
}

func TestGuardQueryAcceptsPositionalPlaceholders(t *testing.T) {
	if err := guardQuery("SELECT * FROM prompts WHERE name = $1 AND version = $2"); err != nil {
		t.Fatalf("unexpected rejection of well-formed SQL: %v", err)
	}
}

func TestGatewayExecWrapsUpstreamError(t *testing.T) {
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("connection reset")
		},
	}}

	_, err := g.exec(context.Background(), "DELETE FROM prompts WHERE name = $1", "router")
	if err == nil {
		t.Fatal("expected exec to propagate the underlying error")
	}
}

func TestGatewayExecRejectsBadSQLBeforeCallingPool(t *testing.T) {
	called := false
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			called = true
			return pgconn.CommandTag{}, nil
		},
	}}

	_, err := g.exec(context.Background(), "DELETE FROM prompts WHERE name = '%s'")
	if err == nil {
		t.Fatal("expected guardQuery to reject the statement")
	}
	if called {
		t.Fatal("pool.Exec must not run once guardQuery rejects the statement")
	}
}

func TestGatewayExecReturnsRowsAffected(t *testing.T) {
	g := &Gateway{pool: &fakeQuerier{
		execFn: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 3"), nil
		},
	}}

	n, err := g.exec(context.Background(), "DELETE FROM prompts WHERE name = $1", "router")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows affected, got %d", n)
	}
}

func TestGatewayQueryIteratesAllRows(t *testing.T) {
	g := &Gateway{pool: &fakeQuerier{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &fakeRows{rows: [][]any{{"global"}, {"local"}}}, nil
		},
	}}

	var layers []string
	err := g.query(context.Background(), "SELECT layer FROM prompts", nil, func(row pgx.Rows) error {
		var layer string
		if err := row.Scan(&layer); err != nil {
			return err
		}
		layers = append(layers, layer)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(layers) != 2 || layers[0] != "global" || layers[1] != "local" {
		t.Fatalf("unexpected layers: %v", layers)
	}
}
