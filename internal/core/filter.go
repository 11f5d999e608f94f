// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"reflect"
	"strings"

	"github.com/coregx/pgrest/internal/syntax"
)

// Cond represents one filter condition that can be compiled into the
// gateway's query grammar. Conditions are used to build WHERE-like
// predicates in a type-safe, fluent manner.
//
// Example:
//
//	client.From("users").
//	    Where(pgrest.Eq("status", "active"), pgrest.Gt("age", 18)).
//	    All(&users)
//
// A condition renders two ways: as a standalone query parameter at the top
// level (age=gt.18, or=(a.eq.1,b.eq.2)), and as an operand token inside an
// enclosing and()/or() group (age.gt.18, or(a.eq.1,b.eq.2)).
type Cond interface {
	// Render compiles the condition into a query parameter. A non-empty
	// path scopes the parameter to an embedded resource (films.year=gte.1990).
	Render(path string) (key, value string, err error)

	// Operand compiles the condition as a token inside a logical group.
	Operand() (string, error)
}

// opCond is a single column/operator/value leaf.
type opCond struct {
	column string
	op     syntax.Operator
	config string // text-search configuration, e.g. "english"
	value  interface{}
	negate bool
}

// Render compiles the leaf into key=value form. Negation stays in the value
// (age=not.eq.21); the parameter key is just the column path.
func (c *opCond) Render(path string) (string, string, error) {
	val, err := c.renderValue()
	if err != nil {
		return "", "", err
	}
	key := c.column
	if path != "" {
		key = path + "." + c.column
	}
	return key, syntax.FilterToken(c.op, c.config, val, c.negate), nil
}

// Operand compiles the leaf as a group token: column.op.value.
func (c *opCond) Operand() (string, error) {
	val, err := c.renderValue()
	if err != nil {
		return "", err
	}
	return syntax.GroupToken(c.column, c.op, c.config, val, c.negate), nil
}

// renderValue renders the right-hand side per operator family: list
// operators get their list syntax, patterns get wildcard translation, and
// is accepts only the null/boolean literals.
func (c *opCond) renderValue() (string, error) {
	if c.column == "" {
		return "", configErrorf("Filter", "empty column name")
	}
	if !c.op.Valid() {
		return "", configErrorf("Filter", "unknown operator %q", string(c.op))
	}

	switch {
	case c.op.TakesParenList():
		items := flattenValues(c.value)
		if len(items) == 0 {
			return "", configErrorf("In", "empty value list for column %q", c.column)
		}
		return syntax.ParenList(syntax.RenderList(items)), nil

	case c.op.TakesBraceList():
		switch v := c.value.(type) {
		case syntax.Range:
			if v.Bounds != "" && !v.ValidBounds() {
				return "", configErrorf("Filter", "invalid range bounds %q", v.Bounds)
			}
			return v.String(), nil
		case string:
			// Caller-provided literal, e.g. "{1,2,3}" or "[2017-01-01,2017-06-30)".
			return v, nil
		default:
			return syntax.BraceList(syntax.RenderList(flattenValues(c.value))), nil
		}

	case c.op == syntax.OpIs:
		val := syntax.RenderValue(c.value)
		if !syntax.ValidIsValue(val) {
			return "", configErrorf("Is", "value must be null, true, or false; got %q", val)
		}
		return val, nil

	case c.op.IsPattern():
		return syntax.TranslateWildcards(syntax.RenderValue(c.value)), nil

	default:
		return syntax.RenderValue(c.value), nil
	}
}

// flattenValues normalizes a condition value into a flat []interface{}.
// A single slice or array argument is expanded so In("id", []int{1,2,3})
// and In("id", 1, 2, 3) behave identically.
func flattenValues(value interface{}) []interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		if len(v) == 1 {
			if inner := reflectSlice(v[0]); inner != nil {
				return inner
			}
		}
		return v
	}
	if items := reflectSlice(value); items != nil {
		return items
	}
	return []interface{}{value}
}

func reflectSlice(value interface{}) []interface{} {
	if value == nil {
		return nil
	}
	if _, ok := value.([]byte); ok {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}

// groupCond combines conditions with and/or logic. Groups render as a
// dedicated parameter (or=(a.eq.1,b.eq.2)) and nest as operand tokens
// (or(a.eq.1,b.eq.2)); negation moves into the key (not.or=...).
type groupCond struct {
	op     string // "and" or "or"
	conds  []Cond
	negate bool
}

func (g *groupCond) Render(path string) (string, string, error) {
	val, err := g.operandList()
	if err != nil {
		return "", "", err
	}
	key := g.op
	if g.negate {
		key = "not." + key
	}
	if path != "" {
		key = path + "." + key
	}
	return key, val, nil
}

func (g *groupCond) Operand() (string, error) {
	val, err := g.operandList()
	if err != nil {
		return "", err
	}
	token := g.op + val
	if g.negate {
		token = "not." + token
	}
	return token, nil
}

func (g *groupCond) operandList() (string, error) {
	if len(g.conds) == 0 {
		return "", configErrorf(strings.ToUpper(g.op[:1])+g.op[1:], "empty condition group")
	}
	parts := make([]string, 0, len(g.conds))
	for _, c := range g.conds {
		token, err := c.Operand()
		if err != nil {
			return "", err
		}
		parts = append(parts, token)
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}

// rawCond wraps a caller-supplied condition list string, e.g.
// "age.lt.25,age.gt.65". Enclosing parentheses are added when missing.
// The content passes through unescaped; it is the caller's trust boundary.
type rawCond struct {
	op  string // "and" or "or"
	raw string
}

func (c *rawCond) wrapped() (string, error) {
	raw := strings.TrimSpace(c.raw)
	if raw == "" {
		return "", configErrorf(strings.ToUpper(c.op[:1])+c.op[1:], "empty condition string")
	}
	if !strings.HasPrefix(raw, "(") {
		raw = "(" + raw + ")"
	}
	return raw, nil
}

func (c *rawCond) Render(path string) (string, string, error) {
	val, err := c.wrapped()
	if err != nil {
		return "", "", err
	}
	key := c.op
	if path != "" {
		key = path + "." + key
	}
	return key, val, nil
}

func (c *rawCond) Operand() (string, error) {
	val, err := c.wrapped()
	if err != nil {
		return "", err
	}
	return c.op + val, nil
}

// Eq matches rows where the column equals the value.
func Eq(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpEq, value: value}
}

// Neq matches rows where the column does not equal the value.
func Neq(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpNeq, value: value}
}

// Gt matches rows where the column is greater than the value.
func Gt(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpGt, value: value}
}

// Gte matches rows where the column is greater than or equal to the value.
func Gte(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpGte, value: value}
}

// Lt matches rows where the column is less than the value.
func Lt(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpLt, value: value}
}

// Lte matches rows where the column is less than or equal to the value.
func Lte(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpLte, value: value}
}

// Like matches the column against a case-sensitive pattern. The * wildcard
// is translated to the gateway's % wildcard.
func Like(column, pattern string) Cond {
	return &opCond{column: column, op: syntax.OpLike, value: pattern}
}

// ILike matches the column against a case-insensitive pattern with the same
// wildcard translation as Like.
func ILike(column, pattern string) Cond {
	return &opCond{column: column, op: syntax.OpILike, value: pattern}
}

// Match matches the column against a POSIX regular expression.
func Match(column, pattern string) Cond {
	return &opCond{column: column, op: syntax.OpMatch, value: pattern}
}

// IMatch matches the column against a case-insensitive POSIX regular expression.
func IMatch(column, pattern string) Cond {
	return &opCond{column: column, op: syntax.OpIMatch, value: pattern}
}

// In matches rows whose column value is one of the given values. A single
// slice argument is expanded. An empty list is a configuration error,
// reported before any request is built.
func In(column string, values ...interface{}) Cond {
	return &opCond{column: column, op: syntax.OpIn, value: values}
}

// Is tests the column against null, true, or false. Any other value is a
// configuration error.
func Is(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpIs, value: value}
}

// Contains matches array or range columns containing the value. Slices
// render as {a,b} literals; syntax.Range values render in range syntax.
func Contains(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpContains, value: value}
}

// ContainedBy matches array or range columns contained by the value.
func ContainedBy(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpContainedBy, value: value}
}

// Overlaps matches array or range columns sharing at least one element or
// point with the value.
func Overlaps(column string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.OpOverlaps, value: value}
}

// Between matches rows where the column lies in the inclusive [low, high]
// interval. It compiles to an and=(column.gte.low,column.lte.high) group.
func Between(column string, low, high interface{}) Cond {
	return And(Gte(column, low), Lte(column, high))
}

// Filter builds a condition from a raw operator name. The operator must
// belong to the supported set; anything else is a configuration error at
// compile time. Useful when the operator arrives as data.
func Filter(column, operator string, value interface{}) Cond {
	return &opCond{column: column, op: syntax.Operator(operator), value: value}
}

// And combines conditions so that all of them must hold.
func And(conds ...Cond) Cond {
	return &groupCond{op: "and", conds: conds}
}

// Or combines conditions so that at least one of them must hold.
func Or(conds ...Cond) Cond {
	return &groupCond{op: "or", conds: conds}
}

// OrRaw wraps a caller-written condition list, adding the enclosing
// parentheses when missing: OrRaw("age.lt.25,age.gt.65") compiles to
// or=(age.lt.25,age.gt.65).
func OrRaw(raw string) Cond {
	return &rawCond{op: "or", raw: raw}
}

// AndRaw is OrRaw for an and group.
func AndRaw(raw string) Cond {
	return &rawCond{op: "and", raw: raw}
}

// Not negates a condition. A leaf negates its operator (age=not.eq.21);
// a group negates as not.and(...)/not.or(...).
func Not(cond Cond) Cond {
	switch c := cond.(type) {
	case *opCond:
		dup := *c
		dup.negate = !dup.negate
		return &dup
	case *groupCond:
		dup := *c
		dup.negate = !dup.negate
		return &dup
	case *TextSearchCond:
		dup := *c
		dup.negate = !dup.negate
		return &dup
	default:
		// Raw conditions carry caller-controlled content; wrap in a group.
		return &groupCond{op: "and", conds: []Cond{cond}, negate: true}
	}
}

// TextSearchCond is a full-text search condition with a fluent surface for
// the search flavor and language configuration.
//
// Example:
//
//	pgrest.TextSearch("description", "fat & cat").Config("english")
//	pgrest.TextSearch("title", "the fat cats").Web()
type TextSearchCond struct {
	column string
	query  string
	op     syntax.Operator
	config string
	negate bool
}

// TextSearch matches the column against a to_tsquery expression.
func TextSearch(column, query string) *TextSearchCond {
	return &TextSearchCond{column: column, query: query, op: syntax.OpFTS}
}

// Plain switches to plainto_tsquery: the query is plain text, not operators.
func (c *TextSearchCond) Plain() *TextSearchCond {
	c.op = syntax.OpPlainFTS
	return c
}

// Phrase switches to phraseto_tsquery: terms must appear adjacent, in order.
func (c *TextSearchCond) Phrase() *TextSearchCond {
	c.op = syntax.OpPhraseFTS
	return c
}

// Web switches to websearch_to_tsquery: quoted phrases, or, and - negation.
func (c *TextSearchCond) Web() *TextSearchCond {
	c.op = syntax.OpWebFTS
	return c
}

// Config sets the text-search language configuration, rendered as
// fts(english).query.
func (c *TextSearchCond) Config(config string) *TextSearchCond {
	c.config = config
	return c
}

// Render implements Cond.
func (c *TextSearchCond) Render(path string) (string, string, error) {
	if c.column == "" {
		return "", "", configErrorf("TextSearch", "empty column name")
	}
	key := c.column
	if path != "" {
		key = path + "." + c.column
	}
	return key, syntax.FilterToken(c.op, c.config, c.query, c.negate), nil
}

// Operand implements Cond.
func (c *TextSearchCond) Operand() (string, error) {
	if c.column == "" {
		return "", configErrorf("TextSearch", "empty column name")
	}
	return syntax.GroupToken(c.column, c.op, c.config, c.query, c.negate), nil
}
