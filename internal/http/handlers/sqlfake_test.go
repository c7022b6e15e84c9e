package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campusfund/internal/domain"
)

// fakeSQL scripts the store per query constant and records every call so
// tests can assert what did (or did not) reach the database.
type fakeSQL struct {
	mu      sync.Mutex
	execFn  func(query string, args ...any) (pgconn.CommandTag, error)
	rowFn   func(query string, args ...any) pgx.Row
	queryFn func(query string, args ...any) (pgx.Rows, error)
	queries []string
}

func (f *fakeSQL) record(query string) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
}

func (f *fakeSQL) calls(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.queries {
		if q == query {
			n++
		}
	}
	return n
}

func (f *fakeSQL) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query)
	if f.execFn == nil {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return f.execFn(query, args...)
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query)
	if f.rowFn == nil {
		return simpleRow{}
	}
	return f.rowFn(query, args...)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query)
	if f.queryFn == nil {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	return f.queryFn(query, args...)
}

// simpleRow scans via the provided func; the zero value reports no rows.
type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// fakeRows plays back scripted rows through the pgx.Rows surface.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(r.rows[r.idx-1]...)(dest...)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

// scanInto copies the provided values into scan destinations in order.
func scanInto(values ...any) func(dest ...any) error {
	return func(dest ...any) error {
		if len(dest) != len(values) {
			return fmt.Errorf("scan arity mismatch: got %d destinations, want %d", len(dest), len(values))
		}
		for i, v := range values {
			switch d := dest[i].(type) {
			case *string:
				*d = v.(string)
			case *int64:
				*d = v.(int64)
			default:
				if err := assignOther(d, v); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func assignOther(dest, v any) error {
	switch d := dest.(type) {
	case *time.Time:
		*d = v.(time.Time)
	case *domain.CampaignStatus:
		*d = v.(domain.CampaignStatus)
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}
