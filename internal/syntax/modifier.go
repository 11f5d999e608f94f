package syntax

import (
	"strconv"
	"strings"
)

// Direction is a sort direction token.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// NullsOrder places null values relative to the sorted rows.
type NullsOrder string

const (
	NullsDefault NullsOrder = ""
	NullsFirst   NullsOrder = "nullsfirst"
	NullsLast    NullsOrder = "nullslast"
)

// OrderToken renders a single ordering term: column.asc, column.desc, or
// column.desc.nullslast. The direction is always explicit.
func OrderToken(column string, dir Direction, nulls NullsOrder) string {
	token := column + "." + string(dir)
	if nulls != NullsDefault {
		token += "." + string(nulls)
	}
	return token
}

// CountMode selects how the gateway computes the total row count.
type CountMode string

const (
	CountNone    CountMode = ""
	CountExact   CountMode = "exact"
	CountPlanned CountMode = "planned"

	// CountEstimated is accepted as input but emitted as planned: the
	// gateway's planner-based estimate is the closest match, and its
	// semantics differ from exact in that the number may be approximate.
	CountEstimated CountMode = "estimated"
)

// Wire returns the count token actually sent in the Prefer header.
func (m CountMode) Wire() CountMode {
	if m == CountEstimated {
		return CountPlanned
	}
	return m
}

// ReturnMode selects whether a mutation response carries the affected rows.
type ReturnMode string

const (
	ReturnNone           ReturnMode = ""
	ReturnRepresentation ReturnMode = "representation"
	ReturnMinimal        ReturnMode = "minimal"
)

// Resolution selects the upsert duplicate-handling strategy.
type Resolution string

const (
	ResolutionNone             Resolution = ""
	ResolutionMergeDuplicates  Resolution = "merge-duplicates"
	ResolutionIgnoreDuplicates Resolution = "ignore-duplicates"
)

// Media types for the Accept header. AcceptSingular asks the gateway to
// unwrap a one-row result into a bare JSON object and to reject any other
// cardinality.
const (
	AcceptJSON     = "application/json"
	AcceptSingular = "application/vnd.pgrst.object+json"
)

// BuildPrefer joins Prefer header tokens in their fixed emission order,
// skipping empties. Callers pass tokens in the canonical order
// return, count, resolution so repeated compilations are byte-identical.
func BuildPrefer(tokens ...string) string {
	kept := tokens[:0:0]
	for _, t := range tokens {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, ",")
}

// RangeToken renders the Range request header value for an inclusive row
// window, e.g. 20-29.
func RangeToken(start, end int) string {
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}
