package core

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// One on an RPC call must not force the singular Accept: scalar functions
// return a bare JSON value, not a row object.
func TestRpcQuery_OneDecodesScalar(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rpc/add_them", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`3`))
	})

	var total int
	err := c.Rpc("add_them", map[string]interface{}{"a": 1, "b": 2}).One(&total)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

// A function returning SQL NULL produces a bare null body, which One
// reports as no rows.
func TestRpcQuery_OneNullScalar(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`null`))
	})

	var total int
	err := c.Rpc("current_winner", nil).One(&total)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRows))
}

// Single opts a set-returning function into the one-object contract.
func TestRpcQuery_SingleThenOne(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"Ada"}`))
	})

	var row testRow
	err := c.Rpc("top_user", nil).Single().One(&row)
	require.NoError(t, err)
	assert.Equal(t, "Ada", row.Name)
}

func TestRpcQuery_AllDecodesRows(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rpc/search_films", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Stalker"},{"id":2,"name":"Solaris"}]`))
	})

	var rows []testRow
	err := c.Rpc("search_films", map[string]interface{}{"year_gte": 1970}).All(&rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Solaris", rows[1].Name)
}

// On a POST call the arguments ride in the body, so result-shaping filters
// still land in the query string.
func TestRpcQuery_PostFiltersInQuery(t *testing.T) {
	c := newTestClient(t)
	desc := buildQuery(t, c.Rpc("search_films", map[string]interface{}{"q": "sol"}).
		Eq("genre", "drama").
		Limit(5))
	assert.Equal(t, http.MethodPost, desc.Method)
	assert.Equal(t, "genre=eq.drama&limit=5", desc.QueryString())
	assert.JSONEq(t, `{"q":"sol"}`, string(desc.Body))
}

func TestRpcQuery_SchemaProfiles(t *testing.T) {
	c := newTestClient(t)

	desc := buildQuery(t, c.Rpc("refresh_views", nil).Schema("analytics"))
	assert.Equal(t, "analytics", desc.Header.Get("Content-Profile"))
	assert.Empty(t, desc.Header.Get("Accept-Profile"))

	desc = buildQuery(t, c.Rpc("search_films", nil).ReadOnly().Schema("analytics"))
	assert.Equal(t, "analytics", desc.Header.Get("Accept-Profile"))
	assert.Empty(t, desc.Header.Get("Content-Profile"))
}

func TestRpcQuery_CloneIndependence(t *testing.T) {
	c := newTestClient(t)

	base := c.Rpc("search_films", map[string]interface{}{"q": "sol"})
	branch := base.Clone().Eq("genre", "drama")

	baseDesc := buildQuery(t, base)
	branchDesc := buildQuery(t, branch)

	assert.Empty(t, baseDesc.QueryString())
	assert.Equal(t, "genre=eq.drama", branchDesc.QueryString())
}
