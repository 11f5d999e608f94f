// Package core implements the query compiler: fluent builders accumulate a
// QueryState, the request assembler compiles it into an immutable
// RequestDescriptor, and the response normalizer turns the gateway's answer
// into a ResponseEnvelope with a classified error.
package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/coregx/pgrest/internal/syntax"
)

// Cardinality is the expected row shape of a response.
type Cardinality int

const (
	// CardinalityMany expects a JSON array of any length.
	CardinalityMany Cardinality = iota
	// CardinalitySingle expects exactly one row, unwrapped to a JSON object.
	CardinalitySingle
	// CardinalityMaybeSingle expects at most one row; a zero-row result is
	// normalized to null data instead of an error.
	CardinalityMaybeSingle
)

// String returns the mode name used in logs.
func (c Cardinality) String() string {
	switch c {
	case CardinalitySingle:
		return "single"
	case CardinalityMaybeSingle:
		return "maybeSingle"
	default:
		return "many"
	}
}

// opKind is the logical operation a builder compiles to.
type opKind int

const (
	opSelect opKind = iota
	opInsert
	opUpdate
	opUpsert
	opDelete
	opRPC
)

// String returns the operation name used for paths, logs, and traces.
func (k opKind) String() string {
	switch k {
	case opInsert:
		return "insert"
	case opUpdate:
		return "update"
	case opUpsert:
		return "upsert"
	case opDelete:
		return "delete"
	case opRPC:
		return "rpc"
	default:
		return "select"
	}
}

// builderName is the user-facing builder entry point for this operation,
// used in configuration error messages.
func (k opKind) builderName() string {
	switch k {
	case opInsert:
		return "Insert"
	case opUpdate:
		return "Update"
	case opUpsert:
		return "Upsert"
	case opDelete:
		return "Delete"
	case opRPC:
		return "Rpc"
	default:
		return "From"
	}
}

// QueryState accumulates everything a builder collects before compilation:
// selections, embeds, filters, modifiers, and the mutation payload. One
// builder instance exclusively owns one state; Clone on the builder is the
// supported way to branch, and compilation deep-copies whatever the
// resulting RequestDescriptor needs, so a finalized descriptor is immune to
// later builder mutation.
type QueryState struct {
	op     opKind
	table  string
	schema string

	selects []SelectItem
	embeds  []*EmbedSpec
	conds   []Cond
	orders  []OrderSpec

	limit     *int
	offset    *int
	rangeFrom *int
	rangeTo   *int

	count syntax.CountMode
	card  Cardinality

	payload    interface{}
	onConflict []string
	returning  syntax.ReturnMode
	resolution syntax.Resolution

	rpcFn   string
	rpcArgs map[string]interface{}
	rpcGet  bool

	headers http.Header

	err error // first configuration error, reported before any I/O
}

func newQueryState(op opKind, table string) *QueryState {
	return &QueryState{op: op, table: table}
}

// setErr records the first configuration error. Later errors are dropped:
// the first misuse is the one worth reporting.
func (s *QueryState) setErr(err error) {
	if s.err == nil && err != nil {
		s.err = err
	}
}

// clone returns a deep copy safe for independent mutation. Cond values are
// immutable after construction, so the slice copy is sufficient for them.
func (s *QueryState) clone() *QueryState {
	dup := *s
	dup.selects = append([]SelectItem(nil), s.selects...)
	if s.embeds != nil {
		dup.embeds = make([]*EmbedSpec, len(s.embeds))
		for i, e := range s.embeds {
			dup.embeds[i] = e.clone()
		}
	}
	dup.conds = append([]Cond(nil), s.conds...)
	dup.orders = append([]OrderSpec(nil), s.orders...)
	dup.limit = cloneIntPtr(s.limit)
	dup.offset = cloneIntPtr(s.offset)
	dup.rangeFrom = cloneIntPtr(s.rangeFrom)
	dup.rangeTo = cloneIntPtr(s.rangeTo)
	dup.onConflict = append([]string(nil), s.onConflict...)
	if s.rpcArgs != nil {
		dup.rpcArgs = make(map[string]interface{}, len(s.rpcArgs))
		for k, v := range s.rpcArgs {
			dup.rpcArgs[k] = v
		}
	}
	if s.headers != nil {
		dup.headers = s.headers.Clone()
	}
	return &dup
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// setHeader records a per-request header override, applied after every
// compiled header.
func (s *QueryState) setHeader(key, value string) {
	if s.headers == nil {
		s.headers = http.Header{}
	}
	s.headers.Set(key, value)
}

// SelectItem is one entry of the select= list: a column with optional alias,
// cast, and aggregate, or a verbatim expression passed through unescaped.
// Verbatim items are the caller's trust boundary: the compiler does not
// inspect them.
type SelectItem struct {
	column    string
	alias     string
	cast      string
	aggregate string
	verbatim  string
}

// Col selects a single column.
func Col(name string) SelectItem {
	return SelectItem{column: name}
}

// RawItem selects a verbatim expression, inserted into select= unescaped.
func RawItem(expr string) SelectItem {
	return SelectItem{verbatim: expr}
}

// As renames the column in the response.
func (it SelectItem) As(alias string) SelectItem {
	it.alias = alias
	return it
}

// Cast appends a ::type cast to the column.
func (it SelectItem) Cast(typ string) SelectItem {
	it.cast = typ
	return it
}

// Aggregate applies an aggregate function to the column. The gateway
// supports count, sum, avg, min, and max.
func (it SelectItem) Aggregate(fn string) SelectItem {
	it.aggregate = fn
	return it
}

func validAggregate(fn string) bool {
	switch fn {
	case "count", "sum", "avg", "min", "max":
		return true
	}
	return false
}

// render compiles the item to its select= token: [alias:]column[::cast][.fn()].
func (it SelectItem) render() (string, error) {
	if it.verbatim != "" {
		return it.verbatim, nil
	}
	if it.column == "" {
		return "", configErrorf("Select", "empty column name")
	}
	token := it.column
	if it.cast != "" {
		token += "::" + it.cast
	}
	if it.aggregate != "" {
		if !validAggregate(it.aggregate) {
			return "", configErrorf("Select", "unsupported aggregate %q", it.aggregate)
		}
		token += "." + it.aggregate + "()"
	}
	if it.alias != "" {
		token = it.alias + ":" + token
	}
	return token, nil
}

// renderSelectList joins select items and embed tokens with commas,
// dropping duplicate rendered tokens (first occurrence wins). Returns the
// empty string when there is nothing to select.
func renderSelectList(items []SelectItem, embeds []*EmbedSpec) (string, error) {
	parts := make([]string, 0, len(items)+len(embeds))
	seen := make(map[string]bool, len(items)+len(embeds))
	add := func(token string) {
		if !seen[token] {
			seen[token] = true
			parts = append(parts, token)
		}
	}
	for _, it := range items {
		token, err := it.render()
		if err != nil {
			return "", err
		}
		add(token)
	}
	for _, e := range embeds {
		token, err := e.renderSelectToken()
		if err != nil {
			return "", err
		}
		add(token)
	}
	return strings.Join(parts, ","), nil
}

// applySelect folds Select arguments into the state: strings are split on
// commas and passed through verbatim, SelectItem values are structured
// columns, and *EmbedSpec values attach an embedded resource.
func (s *QueryState) applySelect(items []interface{}) {
	for _, item := range items {
		switch v := item.(type) {
		case string:
			for _, piece := range strings.Split(v, ",") {
				piece = strings.TrimSpace(piece)
				if piece == "" {
					continue
				}
				s.selects = append(s.selects, SelectItem{verbatim: piece})
			}
		case SelectItem:
			s.selects = append(s.selects, v)
		case *EmbedSpec:
			if v != nil {
				s.embeds = append(s.embeds, v)
			}
		default:
			s.setErr(configErrorf("Select", "unsupported item type %T", item))
		}
	}
}

// OrderSpec is one ordering term.
type OrderSpec struct {
	Column    string
	Direction syntax.Direction
	Nulls     syntax.NullsOrder
}

func (o OrderSpec) render() string {
	return syntax.OrderToken(o.Column, o.Direction, o.Nulls)
}

// parseOrderSpec parses a textual ordering term of the form
// "column [asc|desc] [nullsfirst|nullslast]". Direction defaults to asc.
func parseOrderSpec(spec string) (OrderSpec, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return OrderSpec{}, configErrorf("OrderBy", "empty order spec")
	}
	out := OrderSpec{Column: fields[0], Direction: syntax.Asc}
	for _, tok := range fields[1:] {
		switch strings.ToLower(tok) {
		case "asc":
			out.Direction = syntax.Asc
		case "desc":
			out.Direction = syntax.Desc
		case "nullsfirst":
			out.Nulls = syntax.NullsFirst
		case "nullslast":
			out.Nulls = syntax.NullsLast
		default:
			return OrderSpec{}, configErrorf("OrderBy", "unknown order token %q in %q", tok, spec)
		}
	}
	return out, nil
}

// applyOrderBy parses and appends ordering terms in insertion order.
func (s *QueryState) applyOrderBy(specs []string) {
	for _, spec := range specs {
		parsed, err := parseOrderSpec(spec)
		if err != nil {
			s.setErr(err)
			return
		}
		s.orders = append(s.orders, parsed)
	}
}

func (s *QueryState) applyLimit(n int) {
	if n < 0 {
		s.setErr(configErrorf("Limit", "negative limit %d", n))
		return
	}
	s.limit = &n
}

func (s *QueryState) applyOffset(n int) {
	if n < 0 {
		s.setErr(configErrorf("Offset", "negative offset %d", n))
		return
	}
	s.offset = &n
}

func (s *QueryState) applyRange(from, to int) {
	if from < 0 || to < from {
		s.setErr(configErrorf("Range", "invalid range %d-%d", from, to))
		return
	}
	s.rangeFrom = &from
	s.rangeTo = &to
}

// validate enforces the cross-field invariants before compilation: the
// pagination styles are mutually exclusive, and single-row modes cannot be
// combined with a window larger than one row.
func (s *QueryState) validate() error {
	if s.err != nil {
		return s.err
	}
	if s.op == opRPC {
		if s.rpcFn == "" {
			return configErrorf("Rpc", "empty function name")
		}
	} else if s.table == "" {
		return configErrorf(s.op.builderName(), "empty table name")
	}
	if (s.limit != nil || s.offset != nil) && s.rangeFrom != nil {
		return configErrorf("Range", "range pagination conflicts with limit/offset")
	}
	if s.card != CardinalityMany {
		if s.limit != nil && *s.limit > 1 {
			return configErrorf("Single", "limit %d conflicts with single-row mode", *s.limit)
		}
		if s.rangeFrom != nil && *s.rangeTo > *s.rangeFrom {
			return configErrorf("Single", "range window conflicts with single-row mode")
		}
	}
	return nil
}

// resolveContext picks the effective context for one terminal call:
// the builder's own context wins, then the client default, then background.
func resolveContext(builderCtx, clientCtx context.Context) context.Context {
	if builderCtx != nil {
		return builderCtx
	}
	if clientCtx != nil {
		return clientCtx
	}
	return context.Background()
}
