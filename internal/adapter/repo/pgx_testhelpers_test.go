package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// valuesRow scans fixed values into destinations by assignment.
func valuesRow(values ...any) simpleRow {
	return simpleRow{scan: func(dest ...any) error { return assign(dest, values) }}
}

func errRow(err error) simpleRow {
	return simpleRow{scan: func(...any) error { return err }}
}

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Pointer {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		vv := reflect.ValueOf(v)
		if !vv.Type().AssignableTo(dv.Elem().Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", v, dv.Elem().Type())
		}
		dv.Elem().Set(vv)
	}
	return nil
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

type sliceRows struct {
	testRowsBase
	data   [][]any
	idx    int
	closed bool
}

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error { return assign(dest, r.data[r.idx-1]) }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Close() { r.closed = true }

type sqlCall struct {
	query string
	args  []any
}

// stubExecutor answers queries by their constant text. Unscripted queries fail.
type stubExecutor struct {
	rows   map[string]func(args []any) pgx.Row
	execs  map[string]func(args []any) (pgconn.CommandTag, error)
	lists  map[string]func(args []any) (pgx.Rows, error)
	calls  []sqlCall
	commit int
	abort  int
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{
		rows:  map[string]func([]any) pgx.Row{},
		execs: map[string]func([]any) (pgconn.CommandTag, error){},
		lists: map[string]func([]any) (pgx.Rows, error){},
	}
}

func (s *stubExecutor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.calls = append(s.calls, sqlCall{query: query, args: args})
	if fn, ok := s.execs[query]; ok {
		return fn(args)
	}
	return pgconn.CommandTag{}, errors.New("unexpected exec")
}

func (s *stubExecutor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	s.calls = append(s.calls, sqlCall{query: query, args: args})
	if fn, ok := s.rows[query]; ok {
		return fn(args)
	}
	return errRow(errors.New("unexpected query_row"))
}

func (s *stubExecutor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	s.calls = append(s.calls, sqlCall{query: query, args: args})
	if fn, ok := s.lists[query]; ok {
		return fn(args)
	}
	return nil, errors.New("unexpected query")
}

func (s *stubExecutor) InTx(_ context.Context, fn func(tx infra.SQLExecutor) error) error {
	if err := fn(s); err != nil {
		s.abort++
		return err
	}
	s.commit++
	return nil
}

func (s *stubExecutor) called(query string) int {
	n := 0
	for _, c := range s.calls {
		if c.query == query {
			n++
		}
	}
	return n
}

var _ infra.TxExecutor = (*stubExecutor)(nil)
