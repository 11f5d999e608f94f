package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/pgrest/internal/syntax"
)

// The chained helpers are sugar over Where; each one must land on the
// right wire operator.
func TestSelectQuery_FilterHelpers(t *testing.T) {
	tests := []struct {
		name  string
		build func(q *SelectQuery) *SelectQuery
		want  string
	}{
		{"Eq", func(q *SelectQuery) *SelectQuery { return q.Eq("age", 21) }, "age=eq.21"},
		{"Neq", func(q *SelectQuery) *SelectQuery { return q.Neq("status", "banned") }, "status=neq.banned"},
		{"Gt", func(q *SelectQuery) *SelectQuery { return q.Gt("age", 10) }, "age=gt.10"},
		{"Gte", func(q *SelectQuery) *SelectQuery { return q.Gte("age", 10) }, "age=gte.10"},
		{"Lt", func(q *SelectQuery) *SelectQuery { return q.Lt("age", 10) }, "age=lt.10"},
		{"Lte", func(q *SelectQuery) *SelectQuery { return q.Lte("age", 10) }, "age=lte.10"},
		{"Like", func(q *SelectQuery) *SelectQuery { return q.Like("name", "Jo*") }, "name=like.Jo%25"},
		{"ILike", func(q *SelectQuery) *SelectQuery { return q.ILike("name", "*doe*") }, "name=ilike.%25doe%25"},
		{"In", func(q *SelectQuery) *SelectQuery { return q.In("id", 1, 2, 3) }, "id=in.(1,2,3)"},
		{"Is", func(q *SelectQuery) *SelectQuery { return q.Is("deleted_at", nil) }, "deleted_at=is.null"},
		{"Contains", func(q *SelectQuery) *SelectQuery { return q.Contains("tags", []string{"go"}) }, "tags=cs.%7Bgo%7D"},
		{"ContainedBy", func(q *SelectQuery) *SelectQuery { return q.ContainedBy("tags", []string{"go", "http"}) }, "tags=cd.%7Bgo,http%7D"},
		{"Overlaps", func(q *SelectQuery) *SelectQuery { return q.Overlaps("tags", []string{"a", "b"}) }, "tags=ov.%7Ba,b%7D"},
		{"Filter", func(q *SelectQuery) *SelectQuery { return q.Filter("age", "gte", 18) }, "age=gte.18"},
		{"Or", func(q *SelectQuery) *SelectQuery { return q.Or("age.lt.25,age.gt.65") }, "or=(age.lt.25,age.gt.65)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t)
			desc := buildQuery(t, tt.build(c.From("users")))
			assert.Equal(t, tt.want, desc.QueryString())
		})
	}
}

// Match iterates its map in sorted key order, so two maps with the same
// entries always compile to the same request.
func TestSelectQuery_MatchIsDeterministic(t *testing.T) {
	c := newTestClient(t)

	first := buildQuery(t, c.From("users").Match(map[string]interface{}{
		"z": 3, "a": 1, "m": 2,
	}))
	second := buildQuery(t, c.From("users").Match(map[string]interface{}{
		"m": 2, "z": 3, "a": 1,
	}))

	want := "a=eq.1&m=eq.2&z=eq.3"
	assert.Equal(t, want, first.QueryString())
	assert.Equal(t, want, second.QueryString())
}

func TestSelectQuery_WherePreservesOrder(t *testing.T) {
	c := newTestClient(t)
	desc := buildQuery(t, c.From("users").
		Where(Gte("age", 18), Lte("age", 65)).
		Eq("status", "active"))
	assert.Equal(t, "age=gte.18&age=lte.65&status=eq.active", desc.QueryString())
}

// Per-request headers apply after the compiled ones, so they can replace
// even headers the compiler owns, such as Prefer.
func TestSelectQuery_HeaderOverridesCompiled(t *testing.T) {
	c := newTestClient(t)
	desc := buildQuery(t, c.From("users").
		Count(syntax.CountExact).
		Header("Prefer", "return=minimal"))
	assert.Equal(t, "return=minimal", desc.Header.Get("Prefer"))
}

func TestSelectQuery_CountModes(t *testing.T) {
	c := newTestClient(t)

	desc := buildQuery(t, c.From("users").Count(syntax.CountPlanned))
	require.Equal(t, "count=planned", desc.Header.Get("Prefer"))

	desc = buildQuery(t, c.From("users"))
	assert.Empty(t, desc.Header.Get("Prefer"))
}
