// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"context"

	"github.com/coregx/pgrest/internal/syntax"
)

// InsertQuery builds an insert request. The payload may be a struct, a
// map, or a slice of either; it is JSON-encoded once at compile time.
// Inserts default to Prefer: return=representation so the created rows come
// back; use Returning(syntax.ReturnMinimal) to suppress them.
//
// Example:
//
//	var created User
//	err := client.Insert("users", User{Name: "Ada"}).One(&created)
type InsertQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newInsertQuery(c *Client, table string, payload interface{}) *InsertQuery {
	s := newQueryState(opInsert, table)
	s.payload = payload
	s.returning = syntax.ReturnRepresentation
	return &InsertQuery{client: c, state: s}
}

// WithContext sets the context used by this query's terminal call.
func (q *InsertQuery) WithContext(ctx context.Context) *InsertQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this request.
func (q *InsertQuery) Schema(name string) *InsertQuery {
	q.state.schema = name
	return q
}

// Select shapes the returned representation, like a read query's Select.
func (q *InsertQuery) Select(items ...interface{}) *InsertQuery {
	q.state.applySelect(items)
	return q
}

// Returning sets whether the response carries the affected rows.
func (q *InsertQuery) Returning(mode syntax.ReturnMode) *InsertQuery {
	q.state.returning = mode
	return q
}

// Count asks for the total affected row count in the chosen mode.
func (q *InsertQuery) Count(mode syntax.CountMode) *InsertQuery {
	q.state.count = mode
	return q
}

// Single unwraps a one-row representation into a bare object.
func (q *InsertQuery) Single() *InsertQuery {
	q.state.card = CardinalitySingle
	return q
}

// Header sets a header on this request only.
func (q *InsertQuery) Header(key, value string) *InsertQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query.
func (q *InsertQuery) Clone() *InsertQuery {
	return &InsertQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the query into an immutable RequestDescriptor.
func (q *InsertQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *InsertQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
func (q *InsertQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the insert and decodes the single created row into dest.
func (q *InsertQuery) One(dest interface{}) error {
	if q.state.card == CardinalityMany {
		q.state.card = CardinalitySingle
	}
	return q.call().One(dest)
}

// All executes the insert and decodes the created rows into dest.
func (q *InsertQuery) All(dest interface{}) error {
	return q.call().All(dest)
}

// UpdateQuery builds a partial update. Filters select the target rows; the
// gateway rejects an unfiltered update, so at least one filter (or an
// explicit Limit window) is expected. The payload set via Set is the
// partial column map or struct to apply.
//
// Example:
//
//	env, err := client.Update("users").
//	    Set(map[string]interface{}{"status": "inactive"}).
//	    Eq("id", 7).
//	    Exec()
type UpdateQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newUpdateQuery(c *Client, table string) *UpdateQuery {
	s := newQueryState(opUpdate, table)
	s.returning = syntax.ReturnRepresentation
	return &UpdateQuery{client: c, state: s}
}

// WithContext sets the context used by this query's terminal call.
func (q *UpdateQuery) WithContext(ctx context.Context) *UpdateQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this request.
func (q *UpdateQuery) Schema(name string) *UpdateQuery {
	q.state.schema = name
	return q
}

// Set provides the partial payload to apply to the matched rows.
func (q *UpdateQuery) Set(payload interface{}) *UpdateQuery {
	q.state.payload = payload
	return q
}

// Select shapes the returned representation.
func (q *UpdateQuery) Select(items ...interface{}) *UpdateQuery {
	q.state.applySelect(items)
	return q
}

// Where adds filter conditions selecting the rows to update.
func (q *UpdateQuery) Where(conds ...Cond) *UpdateQuery {
	q.state.conds = append(q.state.conds, conds...)
	return q
}

// Eq adds an equality filter.
func (q *UpdateQuery) Eq(column string, value interface{}) *UpdateQuery {
	return q.Where(Eq(column, value))
}

// Neq adds an inequality filter.
func (q *UpdateQuery) Neq(column string, value interface{}) *UpdateQuery {
	return q.Where(Neq(column, value))
}

// Gt adds a greater-than filter.
func (q *UpdateQuery) Gt(column string, value interface{}) *UpdateQuery {
	return q.Where(Gt(column, value))
}

// Gte adds a greater-than-or-equal filter.
func (q *UpdateQuery) Gte(column string, value interface{}) *UpdateQuery {
	return q.Where(Gte(column, value))
}

// Lt adds a less-than filter.
func (q *UpdateQuery) Lt(column string, value interface{}) *UpdateQuery {
	return q.Where(Lt(column, value))
}

// Lte adds a less-than-or-equal filter.
func (q *UpdateQuery) Lte(column string, value interface{}) *UpdateQuery {
	return q.Where(Lte(column, value))
}

// In filters rows whose column value is one of the given values.
func (q *UpdateQuery) In(column string, values ...interface{}) *UpdateQuery {
	return q.Where(In(column, values...))
}

// Is tests the column against null, true, or false.
func (q *UpdateQuery) Is(column string, value interface{}) *UpdateQuery {
	return q.Where(Is(column, value))
}

// Match adds one equality filter per map entry, in sorted key order.
func (q *UpdateQuery) Match(values map[string]interface{}) *UpdateQuery {
	for _, k := range getKeys(values) {
		q.Where(Eq(k, values[k]))
	}
	return q
}

// Filter adds a condition from a raw operator name.
func (q *UpdateQuery) Filter(column, operator string, value interface{}) *UpdateQuery {
	return q.Where(Filter(column, operator, value))
}

// Or adds a caller-written disjunction, wrapped in parentheses when missing.
func (q *UpdateQuery) Or(raw string) *UpdateQuery {
	return q.Where(OrRaw(raw))
}

// OrderBy orders the matched rows before a Limit window applies.
func (q *UpdateQuery) OrderBy(specs ...string) *UpdateQuery {
	q.state.applyOrderBy(specs)
	return q
}

// Limit caps how many matched rows are updated.
func (q *UpdateQuery) Limit(n int) *UpdateQuery {
	q.state.applyLimit(n)
	return q
}

// Returning sets whether the response carries the affected rows.
func (q *UpdateQuery) Returning(mode syntax.ReturnMode) *UpdateQuery {
	q.state.returning = mode
	return q
}

// Count asks for the total affected row count in the chosen mode.
func (q *UpdateQuery) Count(mode syntax.CountMode) *UpdateQuery {
	q.state.count = mode
	return q
}

// Single unwraps a one-row representation into a bare object.
func (q *UpdateQuery) Single() *UpdateQuery {
	q.state.card = CardinalitySingle
	return q
}

// Header sets a header on this request only.
func (q *UpdateQuery) Header(key, value string) *UpdateQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query.
func (q *UpdateQuery) Clone() *UpdateQuery {
	return &UpdateQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the query into an immutable RequestDescriptor.
func (q *UpdateQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *UpdateQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
func (q *UpdateQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the update and decodes the single updated row into dest.
func (q *UpdateQuery) One(dest interface{}) error {
	if q.state.card == CardinalityMany {
		q.state.card = CardinalitySingle
	}
	return q.call().One(dest)
}

// All executes the update and decodes the updated rows into dest.
func (q *UpdateQuery) All(dest interface{}) error {
	return q.call().All(dest)
}

// UpsertQuery builds an insert that resolves duplicate-key conflicts
// in-place. The default resolution merges duplicates (overwriting the
// existing row); IgnoreDuplicates keeps the existing row instead.
// OnConflict names the column set used to detect a pre-existing row.
//
// Example:
//
//	env, err := client.Upsert("users", users).
//	    OnConflict("email").
//	    Exec()
type UpsertQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newUpsertQuery(c *Client, table string, payload interface{}) *UpsertQuery {
	s := newQueryState(opUpsert, table)
	s.payload = payload
	s.returning = syntax.ReturnRepresentation
	s.resolution = syntax.ResolutionMergeDuplicates
	return &UpsertQuery{client: c, state: s}
}

// WithContext sets the context used by this query's terminal call.
func (q *UpsertQuery) WithContext(ctx context.Context) *UpsertQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this request.
func (q *UpsertQuery) Schema(name string) *UpsertQuery {
	q.state.schema = name
	return q
}

// OnConflict names the conflict-target columns, joined in declared order.
func (q *UpsertQuery) OnConflict(columns ...string) *UpsertQuery {
	q.state.onConflict = append(q.state.onConflict, columns...)
	return q
}

// IgnoreDuplicates keeps existing rows on conflict instead of merging.
func (q *UpsertQuery) IgnoreDuplicates() *UpsertQuery {
	q.state.resolution = syntax.ResolutionIgnoreDuplicates
	return q
}

// Select shapes the returned representation.
func (q *UpsertQuery) Select(items ...interface{}) *UpsertQuery {
	q.state.applySelect(items)
	return q
}

// Returning sets whether the response carries the affected rows.
func (q *UpsertQuery) Returning(mode syntax.ReturnMode) *UpsertQuery {
	q.state.returning = mode
	return q
}

// Count asks for the total affected row count in the chosen mode.
func (q *UpsertQuery) Count(mode syntax.CountMode) *UpsertQuery {
	q.state.count = mode
	return q
}

// Single unwraps a one-row representation into a bare object.
func (q *UpsertQuery) Single() *UpsertQuery {
	q.state.card = CardinalitySingle
	return q
}

// Header sets a header on this request only.
func (q *UpsertQuery) Header(key, value string) *UpsertQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query.
func (q *UpsertQuery) Clone() *UpsertQuery {
	return &UpsertQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the query into an immutable RequestDescriptor.
func (q *UpsertQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *UpsertQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
func (q *UpsertQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the upsert and decodes the single resulting row into dest.
func (q *UpsertQuery) One(dest interface{}) error {
	if q.state.card == CardinalityMany {
		q.state.card = CardinalitySingle
	}
	return q.call().One(dest)
}

// All executes the upsert and decodes the resulting rows into dest.
func (q *UpsertQuery) All(dest interface{}) error {
	return q.call().All(dest)
}

// DeleteQuery builds a delete. Filters select the target rows; the gateway
// rejects an unfiltered delete.
//
// Example:
//
//	env, err := client.Delete("sessions").
//	    Lt("expires_at", cutoff).
//	    Exec()
type DeleteQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newDeleteQuery(c *Client, table string) *DeleteQuery {
	s := newQueryState(opDelete, table)
	s.returning = syntax.ReturnRepresentation
	return &DeleteQuery{client: c, state: s}
}

// WithContext sets the context used by this query's terminal call.
func (q *DeleteQuery) WithContext(ctx context.Context) *DeleteQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this request.
func (q *DeleteQuery) Schema(name string) *DeleteQuery {
	q.state.schema = name
	return q
}

// Select shapes the returned representation of the deleted rows.
func (q *DeleteQuery) Select(items ...interface{}) *DeleteQuery {
	q.state.applySelect(items)
	return q
}

// Where adds filter conditions selecting the rows to delete.
func (q *DeleteQuery) Where(conds ...Cond) *DeleteQuery {
	q.state.conds = append(q.state.conds, conds...)
	return q
}

// Eq adds an equality filter.
func (q *DeleteQuery) Eq(column string, value interface{}) *DeleteQuery {
	return q.Where(Eq(column, value))
}

// Neq adds an inequality filter.
func (q *DeleteQuery) Neq(column string, value interface{}) *DeleteQuery {
	return q.Where(Neq(column, value))
}

// Gt adds a greater-than filter.
func (q *DeleteQuery) Gt(column string, value interface{}) *DeleteQuery {
	return q.Where(Gt(column, value))
}

// Gte adds a greater-than-or-equal filter.
func (q *DeleteQuery) Gte(column string, value interface{}) *DeleteQuery {
	return q.Where(Gte(column, value))
}

// Lt adds a less-than filter.
func (q *DeleteQuery) Lt(column string, value interface{}) *DeleteQuery {
	return q.Where(Lt(column, value))
}

// Lte adds a less-than-or-equal filter.
func (q *DeleteQuery) Lte(column string, value interface{}) *DeleteQuery {
	return q.Where(Lte(column, value))
}

// In filters rows whose column value is one of the given values.
func (q *DeleteQuery) In(column string, values ...interface{}) *DeleteQuery {
	return q.Where(In(column, values...))
}

// Is tests the column against null, true, or false.
func (q *DeleteQuery) Is(column string, value interface{}) *DeleteQuery {
	return q.Where(Is(column, value))
}

// Match adds one equality filter per map entry, in sorted key order.
func (q *DeleteQuery) Match(values map[string]interface{}) *DeleteQuery {
	for _, k := range getKeys(values) {
		q.Where(Eq(k, values[k]))
	}
	return q
}

// Filter adds a condition from a raw operator name.
func (q *DeleteQuery) Filter(column, operator string, value interface{}) *DeleteQuery {
	return q.Where(Filter(column, operator, value))
}

// Or adds a caller-written disjunction, wrapped in parentheses when missing.
func (q *DeleteQuery) Or(raw string) *DeleteQuery {
	return q.Where(OrRaw(raw))
}

// OrderBy orders the matched rows before a Limit window applies.
func (q *DeleteQuery) OrderBy(specs ...string) *DeleteQuery {
	q.state.applyOrderBy(specs)
	return q
}

// Limit caps how many matched rows are deleted.
func (q *DeleteQuery) Limit(n int) *DeleteQuery {
	q.state.applyLimit(n)
	return q
}

// Returning sets whether the response carries the deleted rows.
func (q *DeleteQuery) Returning(mode syntax.ReturnMode) *DeleteQuery {
	q.state.returning = mode
	return q
}

// Count asks for the total affected row count in the chosen mode.
func (q *DeleteQuery) Count(mode syntax.CountMode) *DeleteQuery {
	q.state.count = mode
	return q
}

// Single unwraps a one-row representation into a bare object.
func (q *DeleteQuery) Single() *DeleteQuery {
	q.state.card = CardinalitySingle
	return q
}

// Header sets a header on this request only.
func (q *DeleteQuery) Header(key, value string) *DeleteQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query.
func (q *DeleteQuery) Clone() *DeleteQuery {
	return &DeleteQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the query into an immutable RequestDescriptor.
func (q *DeleteQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *DeleteQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
func (q *DeleteQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the delete and decodes the single deleted row into dest.
func (q *DeleteQuery) One(dest interface{}) error {
	if q.state.card == CardinalityMany {
		q.state.card = CardinalitySingle
	}
	return q.call().One(dest)
}

// All executes the delete and decodes the deleted rows into dest.
func (q *DeleteQuery) All(dest interface{}) error {
	return q.call().All(dest)
}
