package core

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/coregx/pgrest/internal/syntax"
)

// Param is one query-string parameter. Parameters live in an ordered slice
// rather than a map: the gateway's grammar is order-sensitive for logical
// groups, and repeated keys (two filters on one column) are legal.
type Param struct {
	Key   string
	Value string
}

// RequestDescriptor is one fully compiled request: method, path, ordered
// query parameters, headers, and body. It is immutable once built — the
// assembler deep-copies everything it takes from the builder, so mutating
// the builder afterwards never changes an already-compiled descriptor.
// Cardinality and CountMode ride along for the response normalizer.
type RequestDescriptor struct {
	Method string
	Path   string
	Params []Param
	Header http.Header
	Body   []byte

	Operation   string
	Table       string
	Cardinality Cardinality
	CountMode   syntax.CountMode
}

// QueryString renders the parameters in order, percent-encoding each key
// and value while keeping the filter grammar's punctuation readable.
func (d *RequestDescriptor) QueryString() string {
	if len(d.Params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range d.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeParam(p.Key))
		b.WriteByte('=')
		b.WriteString(escapeParam(p.Value))
	}
	return b.String()
}

// URL joins a base URL with the descriptor's path and query string.
func (d *RequestDescriptor) URL(base string) string {
	u := strings.TrimSuffix(base, "/") + d.Path
	if qs := d.QueryString(); qs != "" {
		u += "?" + qs
	}
	return u
}

const upperhex = "0123456789ABCDEF"

// shouldEscape follows RFC 3986 but keeps the characters the gateway's
// grammar leans on — parentheses, commas, dots, colons, the embed markers —
// unescaped so compiled URLs stay readable. Everything else, notably the
// &, =, and % metacharacters and whitespace, is percent-encoded.
func shouldEscape(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '.', '_', '~':
		return false
	case '(', ')', ',', ':', '@', '/', '*', '!':
		return false
	}
	return true
}

func escapeParam(s string) string {
	escaped := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			escaped++
		}
	}
	if escaped == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*escaped)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// assembleRequest compiles a QueryState into a RequestDescriptor. The
// parameter order is fixed — select, embed-scoped parameters (depth-first),
// filters in insertion order, order, limit, offset, on_conflict, RPC
// arguments — so identical states always compile byte-identically.
//
//nolint:cyclop,funlen // The assembly order is a single linear recipe; splitting it obscures it.
func assembleRequest(c *Client, s *QueryState) (*RequestDescriptor, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	desc := &RequestDescriptor{
		Operation:   s.op.String(),
		Cardinality: s.card,
		CountMode:   s.count,
	}

	switch s.op {
	case opInsert, opUpsert:
		desc.Method = http.MethodPost
	case opUpdate:
		desc.Method = http.MethodPatch
	case opDelete:
		desc.Method = http.MethodDelete
	case opRPC:
		if s.rpcGet {
			desc.Method = http.MethodGet
		} else {
			desc.Method = http.MethodPost
		}
	default:
		desc.Method = http.MethodGet
	}

	if s.op == opRPC {
		desc.Table = s.rpcFn
		desc.Path = "/rpc/" + url.PathEscape(s.rpcFn)
	} else {
		desc.Table = s.table
		desc.Path = "/" + url.PathEscape(s.table)
	}

	params := make([]Param, 0, 4+len(s.conds))

	sel, err := renderSelectList(s.selects, s.embeds)
	if err != nil {
		return nil, err
	}
	if sel != "" {
		if len(s.selects) == 0 && len(s.embeds) > 0 {
			// Embeds without explicit columns still need the parent columns.
			sel = "*," + sel
		}
		params = append(params, Param{Key: "select", Value: sel})
	}

	for _, e := range s.embeds {
		params, err = e.emitParams("", params)
		if err != nil {
			return nil, err
		}
	}

	for _, cond := range s.conds {
		key, value, err := cond.Render("")
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: key, Value: value})
	}

	if len(s.orders) > 0 {
		terms := make([]string, len(s.orders))
		for i, o := range s.orders {
			terms[i] = o.render()
		}
		params = append(params, Param{Key: "order", Value: strings.Join(terms, ",")})
	}
	if s.limit != nil {
		params = append(params, Param{Key: "limit", Value: strconv.Itoa(*s.limit)})
	}
	if s.offset != nil {
		params = append(params, Param{Key: "offset", Value: strconv.Itoa(*s.offset)})
	}
	if s.op == opUpsert && len(s.onConflict) > 0 {
		params = append(params, Param{Key: "on_conflict", Value: strings.Join(s.onConflict, ",")})
	}
	if s.op == opRPC && s.rpcGet {
		for _, k := range getKeys(s.rpcArgs) {
			params = append(params, Param{Key: k, Value: renderRPCArg(s.rpcArgs[k])})
		}
	}
	desc.Params = params

	body, err := encodeBody(s)
	if err != nil {
		return nil, err
	}
	desc.Body = body

	desc.Header = buildHeaders(c, s, desc.Method, body != nil)
	return desc, nil
}

// encodeBody marshals the mutation payload or RPC arguments. A payload that
// cannot be encoded is builder misuse, reported as a configuration error.
func encodeBody(s *QueryState) ([]byte, error) {
	switch s.op {
	case opInsert, opUpdate, opUpsert:
		if s.payload == nil {
			return nil, configErrorf(s.op.builderName(), "missing payload")
		}
		body, err := json.Marshal(s.payload)
		if err != nil {
			return nil, configErrorf(s.op.builderName(), "encode payload: %v", err)
		}
		return body, nil
	case opRPC:
		if s.rpcGet {
			return nil, nil
		}
		args := s.rpcArgs
		if args == nil {
			args = map[string]interface{}{}
		}
		body, err := json.Marshal(args)
		if err != nil {
			return nil, configErrorf("Rpc", "encode arguments: %v", err)
		}
		return body, nil
	default:
		return nil, nil
	}
}

// buildHeaders merges headers in fixed precedence: client defaults, schema
// profile, Accept, Prefer, Range, Content-Type, then per-request overrides.
func buildHeaders(c *Client, s *QueryState, method string, hasBody bool) http.Header {
	h := http.Header{}
	if c != nil {
		for k, vs := range c.headers {
			h[k] = append([]string(nil), vs...)
		}
	}

	schema := s.schema
	if schema == "" && c != nil {
		schema = c.schema
	}
	if schema != "" {
		// Reads address the schema via Accept-Profile, writes via Content-Profile.
		if method == http.MethodGet || method == http.MethodHead {
			h.Set("Accept-Profile", schema)
		} else {
			h.Set("Content-Profile", schema)
		}
	}

	if s.card != CardinalityMany {
		h.Set("Accept", syntax.AcceptSingular)
	} else {
		h.Set("Accept", syntax.AcceptJSON)
	}

	var returnTok, countTok, resolutionTok string
	if s.returning != syntax.ReturnNone {
		returnTok = "return=" + string(s.returning)
	}
	if s.count != syntax.CountNone {
		countTok = "count=" + string(s.count.Wire())
	}
	if s.resolution != syntax.ResolutionNone {
		resolutionTok = "resolution=" + string(s.resolution)
	}
	if prefer := syntax.BuildPrefer(returnTok, countTok, resolutionTok); prefer != "" {
		h.Set("Prefer", prefer)
	}

	if s.rangeFrom != nil && s.rangeTo != nil {
		h.Set("Range-Unit", "items")
		h.Set("Range", syntax.RangeToken(*s.rangeFrom, *s.rangeTo))
	}

	if hasBody {
		h.Set("Content-Type", "application/json")
	}

	for k, vs := range s.headers {
		h[k] = append([]string(nil), vs...)
	}
	return h
}

// renderRPCArg renders one flattened GET argument; slices become the {a,b}
// array literal the gateway expects for array-typed parameters.
func renderRPCArg(value interface{}) string {
	if items := reflectSlice(value); items != nil {
		return syntax.BraceList(syntax.RenderList(items))
	}
	return syntax.RenderValue(value)
}

// getKeys returns the map's keys sorted, so argument flattening and any
// other map walk stays deterministic.
func getKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
