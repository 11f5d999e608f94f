package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestOperator_Valid tests the closed operator set
func TestOperator_Valid(t *testing.T) {
	valid := []Operator{
		OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpILike, OpMatch, OpIMatch,
		OpIn, OpIs,
		OpContains, OpContainedBy, OpOverlaps,
		OpFTS, OpPlainFTS, OpPhraseFTS, OpWebFTS,
	}
	for _, op := range valid {
		assert.True(t, op.Valid(), "operator %q should be valid", op)
	}

	invalid := []Operator{"", "equals", "EQ", "like*", "between", "sl"}
	for _, op := range invalid {
		assert.False(t, op.Valid(), "operator %q should be invalid", op)
	}
}

// TestOperator_Classification tests operator family predicates
func TestOperator_Classification(t *testing.T) {
	assert.True(t, OpIn.TakesParenList())
	assert.False(t, OpContains.TakesParenList())

	assert.True(t, OpContains.TakesBraceList())
	assert.True(t, OpContainedBy.TakesBraceList())
	assert.True(t, OpOverlaps.TakesBraceList())
	assert.False(t, OpIn.TakesBraceList())
	assert.False(t, OpEq.TakesBraceList())

	assert.True(t, OpLike.IsPattern())
	assert.True(t, OpILike.IsPattern())
	assert.False(t, OpMatch.IsPattern())
	assert.False(t, OpIMatch.IsPattern())

	assert.True(t, OpFTS.IsTextSearch())
	assert.True(t, OpPlainFTS.IsTextSearch())
	assert.True(t, OpPhraseFTS.IsTextSearch())
	assert.True(t, OpWebFTS.IsTextSearch())
	assert.False(t, OpLike.IsTextSearch())
}

// TestValidIsValue tests the is-operator argument restriction
func TestValidIsValue(t *testing.T) {
	assert.True(t, ValidIsValue("null"))
	assert.True(t, ValidIsValue("true"))
	assert.True(t, ValidIsValue("false"))
	assert.False(t, ValidIsValue("NULL"))
	assert.False(t, ValidIsValue("0"))
	assert.False(t, ValidIsValue("nil"))
	assert.False(t, ValidIsValue(""))
}

// TestFilterToken tests filter token assembly
func TestFilterToken(t *testing.T) {
	tests := []struct {
		name    string
		op      Operator
		config  string
		value   string
		negated bool
		want    string
	}{
		{name: "simple eq", op: OpEq, value: "42", want: "eq.42"},
		{name: "negated eq", op: OpEq, value: "42", negated: true, want: "not.eq.42"},
		{name: "in list", op: OpIn, value: "(1,2,3)", want: "in.(1,2,3)"},
		{name: "negated in", op: OpIn, value: "(a,b)", negated: true, want: "not.in.(a,b)"},
		{name: "is null", op: OpIs, value: "null", want: "is.null"},
		{name: "fts with config", op: OpFTS, config: "english", value: "cat", want: "fts(english).cat"},
		{name: "wfts negated with config", op: OpWebFTS, config: "french", value: "chat", negated: true, want: "not.wfts(french).chat"},
		{name: "fts without config", op: OpPlainFTS, value: "fat cat", want: "plfts.fat cat"},
		{name: "config ignored for non-fts", op: OpEq, config: "english", value: "1", want: "eq.1"},
		{name: "contains braces", op: OpContains, value: "{a,b}", want: "cs.{a,b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterToken(tt.op, tt.config, tt.value, tt.negated))
		})
	}
}

// TestGroupToken tests logical-group operand assembly
func TestGroupToken(t *testing.T) {
	assert.Equal(t, "age.gte.18", GroupToken("age", OpGte, "", "18", false))
	assert.Equal(t, "status.not.eq.closed", GroupToken("status", OpEq, "", "closed", true))
	assert.Equal(t, "bio.fts(english).hiker", GroupToken("bio", OpFTS, "english", "hiker", false))
}
