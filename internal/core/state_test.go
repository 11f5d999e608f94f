package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/pgrest/internal/syntax"
)

func TestSelectItem_Render(t *testing.T) {
	tests := []struct {
		name string
		item SelectItem
		want string
	}{
		{"plain column", Col("id"), "id"},
		{"alias", Col("full_name").As("name"), "name:full_name"},
		{"cast", Col("id").Cast("text"), "id::text"},
		{"aggregate", Col("amount").Aggregate("sum"), "amount.sum()"},
		{"cast before aggregate", Col("amount").Cast("numeric").Aggregate("sum"), "amount::numeric.sum()"},
		{"everything", Col("amount").Cast("numeric").Aggregate("sum").As("total"), "total:amount::numeric.sum()"},
		{"raw passthrough", RawItem("films!inner(title)"), "films!inner(title)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.item.render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty column", func(t *testing.T) {
		_, err := Col("").render()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("unknown aggregate", func(t *testing.T) {
		_, err := Col("amount").Aggregate("median").render()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "median")
	})
}

func TestRenderSelectList_Dedupe(t *testing.T) {
	list, err := renderSelectList([]SelectItem{Col("id"), Col("name"), Col("id")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "id,name", list)
}

func TestParseOrderSpec(t *testing.T) {
	tests := []struct {
		spec string
		want OrderSpec
	}{
		{"name", OrderSpec{Column: "name", Direction: syntax.Asc}},
		{"age desc", OrderSpec{Column: "age", Direction: syntax.Desc}},
		{"age DESC", OrderSpec{Column: "age", Direction: syntax.Desc}},
		{"age desc nullslast", OrderSpec{Column: "age", Direction: syntax.Desc, Nulls: syntax.NullsLast}},
		{"age nullsfirst", OrderSpec{Column: "age", Direction: syntax.Asc, Nulls: syntax.NullsFirst}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := parseOrderSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown token", func(t *testing.T) {
		_, err := parseOrderSpec("age sideways")
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "sideways")
	})

	t.Run("empty spec", func(t *testing.T) {
		_, err := parseOrderSpec("  ")
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestOrderSpec_Render(t *testing.T) {
	assert.Equal(t, "name.asc", OrderSpec{Column: "name", Direction: syntax.Asc}.render())
	assert.Equal(t, "age.desc.nullslast",
		OrderSpec{Column: "age", Direction: syntax.Desc, Nulls: syntax.NullsLast}.render())
}

func TestQueryState_Validate(t *testing.T) {
	c := newTestClient(t)

	t.Run("range conflicts with limit", func(t *testing.T) {
		_, err := c.From("users").Limit(5).Range(0, 9).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "range pagination conflicts")
	})

	t.Run("range conflicts with offset", func(t *testing.T) {
		_, err := c.From("users").Offset(10).Range(0, 9).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("single rejects limit above one", func(t *testing.T) {
		_, err := c.From("users").Single().Limit(2).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("single allows limit one", func(t *testing.T) {
		_, err := c.From("users").Single().Limit(1).Build()
		require.NoError(t, err)
	})

	t.Run("maybe single rejects multi row range", func(t *testing.T) {
		_, err := c.From("users").MaybeSingle().Range(0, 4).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("single allows one row range", func(t *testing.T) {
		_, err := c.From("users").Single().Range(3, 3).Build()
		require.NoError(t, err)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := c.From("").Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "From")
	})

	t.Run("empty function name", func(t *testing.T) {
		_, err := c.Rpc("", nil).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Contains(t, err.Error(), "Rpc")
	})

	t.Run("negative limit", func(t *testing.T) {
		_, err := c.From("users").Limit(-1).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := c.From("users").Range(9, 0).Build()
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("first error wins", func(t *testing.T) {
		_, err := c.From("users").Limit(-1).Offset(-1).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Limit")
	})
}

func TestQueryState_CloneIndependence(t *testing.T) {
	c := newTestClient(t)

	base := c.From("users").
		Select("id", Embed("orders").Select("total")).
		Eq("status", "active").
		OrderBy("name").
		Limit(10).
		Header("X-Trace", "base")

	branch := base.Clone()
	branch.Eq("plan", "pro").Limit(5).Header("X-Trace", "branch")

	baseDesc, err := base.Build()
	require.NoError(t, err)
	branchDesc, err := branch.Build()
	require.NoError(t, err)

	assert.Equal(t,
		"select=id,orders(total)&status=eq.active&order=name.asc&limit=10",
		baseDesc.QueryString())
	assert.Equal(t,
		"select=id,orders(total)&status=eq.active&plan=eq.pro&order=name.asc&limit=5",
		branchDesc.QueryString())
	assert.Equal(t, "base", baseDesc.Header.Get("X-Trace"))
	assert.Equal(t, "branch", branchDesc.Header.Get("X-Trace"))
}

func TestResolveContext(t *testing.T) {
	type ctxKey string
	builderCtx := context.WithValue(context.Background(), ctxKey("scope"), "builder")
	clientCtx := context.WithValue(context.Background(), ctxKey("scope"), "client")

	assert.Equal(t, builderCtx, resolveContext(builderCtx, clientCtx))
	assert.Equal(t, clientCtx, resolveContext(nil, clientCtx))
	assert.Equal(t, context.Background(), resolveContext(nil, nil))
}
