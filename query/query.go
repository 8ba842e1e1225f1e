// Package query provides the chainable, lazily-evaluated query builder over
// a docstore collection.
//
// The surface deliberately mirrors the hosted client ResearchHub talks to in
// production, so calling code can be redirected at the fallback store with
// minimal changes:
//
//	res := query.From(store, docstore.Studies).
//		Eq("status", "active").
//		Order("created_at", false).
//		Limit(1).
//		Single().
//		Execute(ctx)
//
// Nothing touches storage until Execute, and Execute never returns a Go
// error directly: all failures travel inside the Result value.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/researchhub/localbase/docstore"
)

// Result is the outcome of executing a builder. Exactly one of Data and
// Error is set.
type Result struct {
	// Data holds []docstore.Record in read mode, a bare docstore.Record in
	// single mode, and the inserted value in insert mode.
	Data any
	// Error is the failure, if any. Callers must check it before using Data.
	Error error
}

// Records returns Data as a record slice, or an error if the query failed or
// was executed in single mode.
func (r Result) Records() ([]docstore.Record, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	rows, ok := r.Data.([]docstore.Record)
	if !ok {
		return nil, fmt.Errorf("result holds %T, not a record slice", r.Data)
	}
	return rows, nil
}

// Record returns Data as a single record, for single-mode queries and
// single-record inserts.
func (r Result) Record() (docstore.Record, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	rec, ok := r.Data.(docstore.Record)
	if !ok {
		return nil, fmt.Errorf("result holds %T, not a record", r.Data)
	}
	return rec, nil
}

type filter struct {
	field string
	value any
}

// Builder accumulates filter, order, limit and projection state against one
// collection. Chainable methods mutate and return the same builder. A
// builder describes either a read or, after Insert, an append.
type Builder struct {
	store      docstore.Store
	collection string

	fields   []string // nil means full projection
	filters  []filter
	orderBy  string
	orderSet bool
	asc      bool
	limit    int // -1 means no limit
	single   bool

	insertMode bool
	insertOne  bool
	insertRows []docstore.Record

	err error // deferred configuration error, surfaced at Execute
}

// From returns a builder bound to the collection with default state: full
// projection, no filters, no order, no limit, multi-record mode.
func From(store docstore.Store, collection string) *Builder {
	return &Builder{store: store, collection: collection, limit: -1}
}

// Select sets the projection. fields is "*" (or empty) for every field, or a
// comma-separated field list. Projection only affects the shape of returned
// records, never which records match.
func (b *Builder) Select(fields string) *Builder {
	fields = strings.TrimSpace(fields)
	if fields == "" || fields == "*" {
		b.fields = nil
		return b
	}
	var out []string
	for _, f := range strings.Split(fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	b.fields = out
	return b
}

// Eq appends an equality predicate. Multiple calls AND together.
func (b *Builder) Eq(field string, value any) *Builder {
	b.filters = append(b.filters, filter{field: field, value: value})
	return b
}

// Order sets the sort key. Only one order clause is supported: the last call
// wins.
func (b *Builder) Order(field string, ascending bool) *Builder {
	b.orderBy = field
	b.orderSet = true
	b.asc = ascending
	return b
}

// Limit caps the result count after filtering and ordering.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		n = 0
	}
	b.limit = n
	return b
}

// Single switches the builder to single-record mode: Execute returns the
// first matching record directly instead of a slice, and ErrNotFound when
// nothing matches. More than one match is not an error; the first wins.
func (b *Builder) Single() *Builder {
	b.single = true
	return b
}

// Insert switches the builder into insert mode. value is one
// docstore.Record (returned bare from Execute) or a []docstore.Record.
// Records are appended as given: no id is assigned, the caller supplies it.
func (b *Builder) Insert(value any) *Builder {
	b.insertMode = true
	switch v := value.(type) {
	case docstore.Record:
		b.insertOne = true
		b.insertRows = []docstore.Record{v}
	case map[string]any:
		b.insertOne = true
		b.insertRows = []docstore.Record{docstore.Record(v)}
	case []docstore.Record:
		b.insertRows = v
	default:
		b.err = fmt.Errorf("insert expects a record or record slice, got %T", value)
	}
	return b
}

// Execute runs the accumulated query against storage. All failures are
// returned inside the Result; Execute never panics.
func (b *Builder) Execute(ctx context.Context) Result {
	if b.err != nil {
		return Result{Error: b.err}
	}
	if b.insertMode {
		return b.executeInsert(ctx)
	}
	return b.executeRead(ctx)
}

func (b *Builder) executeInsert(ctx context.Context) Result {
	_, err := b.store.Update(ctx, b.collection, func(rows []docstore.Record) ([]docstore.Record, error) {
		return append(rows, docstore.CloneRecords(b.insertRows)...), nil
	})
	if err != nil {
		return Result{Error: err}
	}
	if b.insertOne {
		return Result{Data: b.insertRows[0]}
	}
	return Result{Data: b.insertRows}
}

func (b *Builder) executeRead(ctx context.Context) Result {
	rows, err := b.store.Read(ctx, b.collection)
	if err != nil {
		return Result{Error: err}
	}

	if len(b.filters) > 0 {
		kept := rows[:0]
		for _, rec := range rows {
			if b.matches(rec) {
				kept = append(kept, rec)
			}
		}
		rows = kept
	}

	if b.orderSet {
		field := b.orderBy
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareValues(rows[i][field], rows[j][field])
			if b.asc {
				return c < 0
			}
			return c > 0
		})
	}

	if b.limit >= 0 && len(rows) > b.limit {
		rows = rows[:b.limit]
	}

	if b.fields != nil {
		projected := make([]docstore.Record, len(rows))
		for i, rec := range rows {
			p := make(docstore.Record, len(b.fields))
			for _, f := range b.fields {
				if v, ok := rec[f]; ok {
					p[f] = v
				}
			}
			projected[i] = p
		}
		rows = projected
	}

	if b.single {
		if len(rows) == 0 {
			return Result{Error: docstore.ErrNotFound}
		}
		return Result{Data: rows[0]}
	}
	return Result{Data: rows}
}

func (b *Builder) matches(rec docstore.Record) bool {
	for _, f := range b.filters {
		if !equalValues(rec[f.field], f.value) {
			return false
		}
	}
	return true
}

// IsNotFound reports whether err is the single-mode no-rows error.
func IsNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
