package core

import (
	"strconv"
	"strings"
)

// EmbedSpec describes one embedded (joined) resource: the related rows the
// gateway inlines next to the parent rows. Embeds nest without depth limit
// and carry their own selects, filters, ordering, and row window.
//
// Example:
//
//	client.From("directors").
//	    Select("last_name", pgrest.Embed("films").
//	        Select("title", "year").
//	        Where(pgrest.Gte("year", 1990)).
//	        OrderBy("year desc").
//	        Limit(5)).
//	    All(&directors)
type EmbedSpec struct {
	resource string
	alias    string
	hint     string
	inner    bool

	selects []SelectItem
	embeds  []*EmbedSpec
	conds   []Cond
	orders  []OrderSpec
	limit   *int
	offset  *int

	err error
}

// Embed starts an embedded resource specification.
func Embed(resource string) *EmbedSpec {
	return &EmbedSpec{resource: resource}
}

func (e *EmbedSpec) setErr(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

// As renames the embedded resource in the response.
func (e *EmbedSpec) As(alias string) *EmbedSpec {
	e.alias = alias
	return e
}

// Hint disambiguates the join by naming the foreign-key constraint or
// column to follow, rendered as resource!hint(...).
func (e *EmbedSpec) Hint(hint string) *EmbedSpec {
	e.hint = hint
	return e
}

// Inner turns the embed into an inner join: parent rows without a matching
// embedded row are dropped.
func (e *EmbedSpec) Inner() *EmbedSpec {
	e.inner = true
	return e
}

// Select adds columns or nested embeds to the embedded resource. Accepts
// the same argument kinds as the query builder's Select: strings (split on
// commas, passed through verbatim), SelectItem values, and nested *EmbedSpec.
func (e *EmbedSpec) Select(items ...interface{}) *EmbedSpec {
	for _, item := range items {
		switch v := item.(type) {
		case string:
			for _, piece := range strings.Split(v, ",") {
				piece = strings.TrimSpace(piece)
				if piece == "" {
					continue
				}
				e.selects = append(e.selects, SelectItem{verbatim: piece})
			}
		case SelectItem:
			e.selects = append(e.selects, v)
		case *EmbedSpec:
			if v != nil {
				e.embeds = append(e.embeds, v)
			}
		default:
			e.setErr(configErrorf("Select", "unsupported item type %T", item))
		}
	}
	return e
}

// Where adds filters applied to the embedded rows only.
func (e *EmbedSpec) Where(conds ...Cond) *EmbedSpec {
	e.conds = append(e.conds, conds...)
	return e
}

// OrderBy orders the embedded rows; specs follow the builder's
// "column [asc|desc] [nullsfirst|nullslast]" form.
func (e *EmbedSpec) OrderBy(specs ...string) *EmbedSpec {
	for _, spec := range specs {
		parsed, err := parseOrderSpec(spec)
		if err != nil {
			e.setErr(err)
			return e
		}
		e.orders = append(e.orders, parsed)
	}
	return e
}

// Limit caps the number of embedded rows per parent row.
func (e *EmbedSpec) Limit(n int) *EmbedSpec {
	if n < 0 {
		e.setErr(configErrorf("Limit", "negative limit %d", n))
		return e
	}
	e.limit = &n
	return e
}

// Offset skips leading embedded rows per parent row.
func (e *EmbedSpec) Offset(n int) *EmbedSpec {
	if n < 0 {
		e.setErr(configErrorf("Offset", "negative offset %d", n))
		return e
	}
	e.offset = &n
	return e
}

func (e *EmbedSpec) clone() *EmbedSpec {
	dup := *e
	dup.selects = append([]SelectItem(nil), e.selects...)
	if e.embeds != nil {
		dup.embeds = make([]*EmbedSpec, len(e.embeds))
		for i, child := range e.embeds {
			dup.embeds[i] = child.clone()
		}
	}
	dup.conds = append([]Cond(nil), e.conds...)
	dup.orders = append([]OrderSpec(nil), e.orders...)
	dup.limit = cloneIntPtr(e.limit)
	dup.offset = cloneIntPtr(e.offset)
	return &dup
}

// pathSegment is the name the gateway uses to scope parameters to this
// embed: the alias when set, the resource name otherwise.
func (e *EmbedSpec) pathSegment() string {
	if e.alias != "" {
		return e.alias
	}
	return e.resource
}

// renderSelectToken renders the embed's select= fragment:
// [alias:]resource[!hint][!inner](nested). An embed selecting nothing
// renders (*).
func (e *EmbedSpec) renderSelectToken() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	if e.resource == "" {
		return "", configErrorf("Embed", "empty resource name")
	}
	head := e.resource
	if e.hint != "" {
		head += "!" + e.hint
	}
	if e.inner {
		head += "!inner"
	}
	if e.alias != "" {
		head = e.alias + ":" + head
	}
	nested, err := renderSelectList(e.selects, e.embeds)
	if err != nil {
		return "", err
	}
	if nested == "" {
		nested = "*"
	}
	return head + "(" + nested + ")", nil
}

// emitParams appends the embed-scoped parameters (filters, order, limit,
// offset) for this embed and, depth-first, its children. prefix is the
// dot-joined path of enclosing embeds, empty at the top level.
func (e *EmbedSpec) emitParams(prefix string, out []Param) ([]Param, error) {
	if e.err != nil {
		return nil, e.err
	}
	path := e.pathSegment()
	if prefix != "" {
		path = prefix + "." + path
	}
	for _, c := range e.conds {
		key, value, err := c.Render(path)
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Key: key, Value: value})
	}
	if len(e.orders) > 0 {
		terms := make([]string, len(e.orders))
		for i, o := range e.orders {
			terms[i] = o.render()
		}
		out = append(out, Param{Key: path + ".order", Value: strings.Join(terms, ",")})
	}
	if e.limit != nil {
		out = append(out, Param{Key: path + ".limit", Value: strconv.Itoa(*e.limit)})
	}
	if e.offset != nil {
		out = append(out, Param{Key: path + ".offset", Value: strconv.Itoa(*e.offset)})
	}
	for _, child := range e.embeds {
		var err error
		out, err = child.emitParams(path, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
