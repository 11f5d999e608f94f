// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package syntax

import "strings"

// Operator is a PostgREST filter operator. The set is closed: anything not
// listed here is rejected before a request is built.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"

	OpLike   Operator = "like"
	OpILike  Operator = "ilike"
	OpMatch  Operator = "match"
	OpIMatch Operator = "imatch"

	OpIn Operator = "in"
	OpIs Operator = "is"

	OpContains    Operator = "cs"
	OpContainedBy Operator = "cd"
	OpOverlaps    Operator = "ov"

	OpFTS       Operator = "fts"
	OpPlainFTS  Operator = "plfts"
	OpPhraseFTS Operator = "phfts"
	OpWebFTS    Operator = "wfts"
)

// Valid reports whether the operator belongs to the closed set.
func (o Operator) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpILike, OpMatch, OpIMatch,
		OpIn, OpIs,
		OpContains, OpContainedBy, OpOverlaps,
		OpFTS, OpPlainFTS, OpPhraseFTS, OpWebFTS:
		return true
	}
	return false
}

// TakesParenList reports whether the operator's value is a parenthesized list.
func (o Operator) TakesParenList() bool {
	return o == OpIn
}

// TakesBraceList reports whether the operator's value is a curly-brace array
// literal when given a slice.
func (o Operator) TakesBraceList() bool {
	switch o {
	case OpContains, OpContainedBy, OpOverlaps:
		return true
	}
	return false
}

// IsPattern reports whether the operator consumes a wildcard pattern subject
// to *-to-% translation.
func (o Operator) IsPattern() bool {
	return o == OpLike || o == OpILike
}

// IsTextSearch reports whether the operator accepts a text-search
// configuration suffix such as fts(english).
func (o Operator) IsTextSearch() bool {
	switch o {
	case OpFTS, OpPlainFTS, OpPhraseFTS, OpWebFTS:
		return true
	}
	return false
}

// ValidIsValue reports whether the rendered literal is legal for the is
// operator, which matches only null and boolean states.
func ValidIsValue(s string) bool {
	switch s {
	case "null", "true", "false":
		return true
	}
	return false
}

// FilterToken assembles the right-hand side of a filter parameter:
// op.value, optionally prefixed with not. and carrying a text-search
// configuration, e.g. not.fts(english).cat.
func FilterToken(op Operator, config, value string, negated bool) string {
	var b strings.Builder
	if negated {
		b.WriteString("not.")
	}
	b.WriteString(string(op))
	if config != "" && op.IsTextSearch() {
		b.WriteByte('(')
		b.WriteString(config)
		b.WriteByte(')')
	}
	b.WriteByte('.')
	b.WriteString(value)
	return b.String()
}

// GroupToken assembles one operand of a logical group parameter:
// column.op.value with the same not. and configuration rules as FilterToken.
func GroupToken(column string, op Operator, config, value string, negated bool) string {
	return column + "." + FilterToken(op, config, value, negated)
}
