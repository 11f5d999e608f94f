// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"context"

	"github.com/coregx/pgrest/internal/syntax"
)

// SelectQuery builds a read request against one table. Methods chain and
// mutate the query in place; use Clone to branch two queries from a common
// prefix. Nothing touches the network until a terminal call (Exec, One,
// All) runs.
//
// Example:
//
//	var users []User
//	err := client.From("users").
//	    Select("id", "name").
//	    Eq("status", "active").
//	    OrderBy("name").
//	    Limit(20).
//	    All(&users)
type SelectQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newSelectQuery(c *Client, table string) *SelectQuery {
	return &SelectQuery{client: c, state: newQueryState(opSelect, table)}
}

// WithContext sets the context used by this query's terminal call. It takes
// precedence over the client's default context.
func (q *SelectQuery) WithContext(ctx context.Context) *SelectQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this query.
func (q *SelectQuery) Schema(name string) *SelectQuery {
	q.state.schema = name
	return q
}

// Select adds columns, structured SelectItem values, or *EmbedSpec embeds
// to the select list. String arguments are split on commas and passed
// through verbatim. Duplicate rendered tokens are dropped at compile time,
// first occurrence wins.
func (q *SelectQuery) Select(items ...interface{}) *SelectQuery {
	q.state.applySelect(items)
	return q
}

// Where adds filter conditions; all conditions must hold.
func (q *SelectQuery) Where(conds ...Cond) *SelectQuery {
	q.state.conds = append(q.state.conds, conds...)
	return q
}

// Eq adds an equality filter.
func (q *SelectQuery) Eq(column string, value interface{}) *SelectQuery {
	return q.Where(Eq(column, value))
}

// Neq adds an inequality filter.
func (q *SelectQuery) Neq(column string, value interface{}) *SelectQuery {
	return q.Where(Neq(column, value))
}

// Gt adds a greater-than filter.
func (q *SelectQuery) Gt(column string, value interface{}) *SelectQuery {
	return q.Where(Gt(column, value))
}

// Gte adds a greater-than-or-equal filter.
func (q *SelectQuery) Gte(column string, value interface{}) *SelectQuery {
	return q.Where(Gte(column, value))
}

// Lt adds a less-than filter.
func (q *SelectQuery) Lt(column string, value interface{}) *SelectQuery {
	return q.Where(Lt(column, value))
}

// Lte adds a less-than-or-equal filter.
func (q *SelectQuery) Lte(column string, value interface{}) *SelectQuery {
	return q.Where(Lte(column, value))
}

// Like adds a case-sensitive pattern filter; * translates to %.
func (q *SelectQuery) Like(column, pattern string) *SelectQuery {
	return q.Where(Like(column, pattern))
}

// ILike adds a case-insensitive pattern filter; * translates to %.
func (q *SelectQuery) ILike(column, pattern string) *SelectQuery {
	return q.Where(ILike(column, pattern))
}

// In filters rows whose column value is one of the given values.
func (q *SelectQuery) In(column string, values ...interface{}) *SelectQuery {
	return q.Where(In(column, values...))
}

// Is tests the column against null, true, or false.
func (q *SelectQuery) Is(column string, value interface{}) *SelectQuery {
	return q.Where(Is(column, value))
}

// Contains filters array or range columns containing the value.
func (q *SelectQuery) Contains(column string, value interface{}) *SelectQuery {
	return q.Where(Contains(column, value))
}

// ContainedBy filters array or range columns contained by the value.
func (q *SelectQuery) ContainedBy(column string, value interface{}) *SelectQuery {
	return q.Where(ContainedBy(column, value))
}

// Overlaps filters array or range columns overlapping the value.
func (q *SelectQuery) Overlaps(column string, value interface{}) *SelectQuery {
	return q.Where(Overlaps(column, value))
}

// Match adds one equality filter per map entry, in sorted key order so the
// compiled request is deterministic.
func (q *SelectQuery) Match(values map[string]interface{}) *SelectQuery {
	for _, k := range getKeys(values) {
		q.Where(Eq(k, values[k]))
	}
	return q
}

// Filter adds a condition from a raw operator name, e.g.
// Filter("age", "gte", 18). Unknown operators fail at compile time.
func (q *SelectQuery) Filter(column, operator string, value interface{}) *SelectQuery {
	return q.Where(Filter(column, operator, value))
}

// Or adds a caller-written disjunction such as "age.lt.25,age.gt.65",
// wrapped in parentheses when missing.
func (q *SelectQuery) Or(raw string) *SelectQuery {
	return q.Where(OrRaw(raw))
}

// OrderBy appends ordering terms of the form
// "column [asc|desc] [nullsfirst|nullslast]", kept in insertion order.
func (q *SelectQuery) OrderBy(specs ...string) *SelectQuery {
	q.state.applyOrderBy(specs)
	return q
}

// Limit caps the number of returned rows.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.state.applyLimit(n)
	return q
}

// Offset skips the first n rows.
func (q *SelectQuery) Offset(n int) *SelectQuery {
	q.state.applyOffset(n)
	return q
}

// Range requests the inclusive row window [from, to] via the Range header.
// The response's Content-Range total feeds the envelope count. Mutually
// exclusive with Limit/Offset.
func (q *SelectQuery) Range(from, to int) *SelectQuery {
	q.state.applyRange(from, to)
	return q
}

// Count asks the gateway to report the total matching row count in the
// chosen mode. The estimated mode is sent as planned; its number may be
// approximate where exact is not.
func (q *SelectQuery) Count(mode syntax.CountMode) *SelectQuery {
	q.state.count = mode
	return q
}

// Single requires exactly one matching row, returned as a bare object.
// Zero or multiple matches become a cardinality error.
func (q *SelectQuery) Single() *SelectQuery {
	q.state.card = CardinalitySingle
	return q
}

// MaybeSingle requires at most one matching row. Zero matches normalize to
// null data with no error; multiple matches are a cardinality error.
func (q *SelectQuery) MaybeSingle() *SelectQuery {
	q.state.card = CardinalityMaybeSingle
	return q
}

// Header sets a header on this request only, applied after all compiled
// headers.
func (q *SelectQuery) Header(key, value string) *SelectQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query. Mutating either copy
// never affects the other.
func (q *SelectQuery) Clone() *SelectQuery {
	return &SelectQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the query into an immutable RequestDescriptor without
// executing it.
func (q *SelectQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *SelectQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
// Execution errors are carried in the envelope's Error field; the returned
// error is reserved for builder misuse detected before any I/O.
func (q *SelectQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the query and decodes exactly one row into dest. A query
// still in many-rows mode is switched to Single first. Returns ErrNoRows
// when no row matched.
func (q *SelectQuery) One(dest interface{}) error {
	if q.state.card == CardinalityMany {
		q.state.card = CardinalitySingle
	}
	return q.call().One(dest)
}

// All executes the query and decodes the resulting rows into dest, which
// must be a pointer to a slice.
func (q *SelectQuery) All(dest interface{}) error {
	return q.call().All(dest)
}
