package core

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/coregx/pgrest/internal/syntax"
)

// descriptorSnapshot renders a compiled request in a stable textual form:
// request line, headers in sorted name order, then the body. Golden files
// pin the full compiled output so any wire-format drift shows up as a diff.
func descriptorSnapshot(t *testing.T, desc *RequestDescriptor) []byte {
	t.Helper()

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n", desc.Method, desc.URL("http://localhost:3000"))

	names := make([]string, 0, len(desc.Header))
	for name := range desc.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(desc.Header[name], "; "))
	}

	if desc.Body != nil {
		b.WriteByte('\n')
		b.Write(desc.Body)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func assertGoldenRequest(t *testing.T, name string, b interface {
	Build() (*RequestDescriptor, error)
}) {
	t.Helper()

	desc, err := b.Build()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, descriptorSnapshot(t, desc))
}

func TestCompiledRequests_Golden(t *testing.T) {
	c := newTestClient(t)

	t.Run("embedded select with range", func(t *testing.T) {
		q := c.From("directors").
			Select("last_name", Embed("films").
				Select("title", "year").
				Where(Gte("year", 1990)).
				OrderBy("year desc").
				Limit(5)).
			Eq("nationality", "US").
			OrderBy("last_name").
			Range(0, 9).
			Count(syntax.CountExact)
		assertGoldenRequest(t, "directors_embedded_select", q)
	})

	t.Run("upsert with conflict target", func(t *testing.T) {
		q := c.Upsert("subscribers", []map[string]interface{}{
			{"email": "ada@example.com", "plan": "pro"},
		}).
			OnConflict("email").
			Select("email", "plan").
			Count(syntax.CountExact)
		assertGoldenRequest(t, "upsert_merge_duplicates", q)
	})

	t.Run("readonly rpc with shaped result", func(t *testing.T) {
		q := c.Rpc("search_films", map[string]interface{}{
			"year_gte": 1990,
			"genres":   []string{"drama", "noir"},
		}).
			ReadOnly().
			Select("title").
			OrderBy("title").
			Limit(3)
		assertGoldenRequest(t, "rpc_readonly_args", q)
	})

	t.Run("single row patch", func(t *testing.T) {
		q := c.Update("accounts").
			Set(map[string]interface{}{"status": "suspended"}).
			Eq("id", 42).
			Single().
			Header("X-Request-Id", "req-7")
		assertGoldenRequest(t, "single_row_patch", q)
	})
}
