package core

import (
	"context"

	"github.com/coregx/pgrest/internal/syntax"
)

// RpcQuery builds a stored-function call. By default the call is a POST
// with the named arguments as a JSON object body; ReadOnly compiles to a
// GET with the arguments flattened into query parameters (slices become
// {a,b} literals), which lets intermediaries cache the call. Results flow
// through the same response normalizer as table reads, so Select, filters,
// ordering, and cardinality modes apply to set-returning functions.
//
// Example:
//
//	var total int
//	err := client.Rpc("add_them", map[string]interface{}{"a": 1, "b": 2}).
//	    ReadOnly().
//	    One(&total)
type RpcQuery struct {
	client *Client
	state  *QueryState
	ctx    context.Context
}

func newRpcQuery(c *Client, fn string, args map[string]interface{}) *RpcQuery {
	s := newQueryState(opRPC, "")
	s.rpcFn = fn
	if args != nil {
		s.rpcArgs = make(map[string]interface{}, len(args))
		for k, v := range args {
			s.rpcArgs[k] = v
		}
	}
	return &RpcQuery{client: c, state: s}
}

// WithContext sets the context used by this query's terminal call.
func (q *RpcQuery) WithContext(ctx context.Context) *RpcQuery {
	q.ctx = ctx
	return q
}

// Schema overrides the client's schema for this call.
func (q *RpcQuery) Schema(name string) *RpcQuery {
	q.state.schema = name
	return q
}

// ReadOnly compiles the call as a GET with flattened arguments. Only valid
// for functions the gateway exposes as callable via GET (stable or
// immutable volatility).
func (q *RpcQuery) ReadOnly() *RpcQuery {
	q.state.rpcGet = true
	return q
}

// Select shapes the rows of a set-returning function.
func (q *RpcQuery) Select(items ...interface{}) *RpcQuery {
	q.state.applySelect(items)
	return q
}

// Where adds filter conditions applied to the function's result set.
func (q *RpcQuery) Where(conds ...Cond) *RpcQuery {
	q.state.conds = append(q.state.conds, conds...)
	return q
}

// Eq adds an equality filter on the result set.
func (q *RpcQuery) Eq(column string, value interface{}) *RpcQuery {
	return q.Where(Eq(column, value))
}

// Gt adds a greater-than filter on the result set.
func (q *RpcQuery) Gt(column string, value interface{}) *RpcQuery {
	return q.Where(Gt(column, value))
}

// In filters result rows whose column value is one of the given values.
func (q *RpcQuery) In(column string, values ...interface{}) *RpcQuery {
	return q.Where(In(column, values...))
}

// Filter adds a condition from a raw operator name.
func (q *RpcQuery) Filter(column, operator string, value interface{}) *RpcQuery {
	return q.Where(Filter(column, operator, value))
}

// OrderBy orders the function's result rows.
func (q *RpcQuery) OrderBy(specs ...string) *RpcQuery {
	q.state.applyOrderBy(specs)
	return q
}

// Limit caps the number of result rows.
func (q *RpcQuery) Limit(n int) *RpcQuery {
	q.state.applyLimit(n)
	return q
}

// Offset skips leading result rows.
func (q *RpcQuery) Offset(n int) *RpcQuery {
	q.state.applyOffset(n)
	return q
}

// Count asks for the total result row count in the chosen mode.
func (q *RpcQuery) Count(mode syntax.CountMode) *RpcQuery {
	q.state.count = mode
	return q
}

// Single requires exactly one result row, returned as a bare object.
func (q *RpcQuery) Single() *RpcQuery {
	q.state.card = CardinalitySingle
	return q
}

// MaybeSingle requires at most one result row; zero rows normalize to null
// data with no error.
func (q *RpcQuery) MaybeSingle() *RpcQuery {
	q.state.card = CardinalityMaybeSingle
	return q
}

// Header sets a header on this request only.
func (q *RpcQuery) Header(key, value string) *RpcQuery {
	q.state.setHeader(key, value)
	return q
}

// Clone returns an independent copy of the query.
func (q *RpcQuery) Clone() *RpcQuery {
	return &RpcQuery{client: q.client, state: q.state.clone(), ctx: q.ctx}
}

// Build compiles the call into an immutable RequestDescriptor.
func (q *RpcQuery) Build() (*RequestDescriptor, error) {
	return assembleRequest(q.client, q.state)
}

func (q *RpcQuery) call() *Call {
	desc, err := q.Build()
	return newCall(q.client, desc, resolveContext(q.ctx, q.client.ctx), err)
}

// Exec performs the round trip and returns the normalized envelope.
func (q *RpcQuery) Exec() (*ResponseEnvelope, error) {
	return q.call().Exec()
}

// One executes the call and decodes the result into dest. Scalar-returning
// functions produce a bare JSON value that decodes directly; for
// set-returning functions combine with Single to unwrap a one-row result.
func (q *RpcQuery) One(dest interface{}) error {
	return q.call().One(dest)
}

// All executes the call and decodes the result rows into dest.
func (q *RpcQuery) All(dest interface{}) error {
	return q.call().All(dest)
}
