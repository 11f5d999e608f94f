// Package pgrest compiles fluent query expressions into PostgREST-style
// HTTP requests and normalizes the responses into typed envelopes. It
// covers reads with embedded resources, inserts, updates, upserts,
// deletes, stored-function calls, and reflection-driven struct CRUD, with
// a stable error taxonomy, structured logging, and OpenTelemetry tracing
// out of the box.
package pgrest

import (
	"github.com/coregx/pgrest/internal/core"
	"github.com/coregx/pgrest/internal/syntax"
)

type (
	// Client talks to one PostgREST-compatible gateway.
	Client = core.Client
	// Option is a functional option for configuring Client.
	Option = core.Option

	// SelectQuery builds a read request against one table or view.
	SelectQuery = core.SelectQuery
	// InsertQuery builds an insert request.
	InsertQuery = core.InsertQuery
	// UpdateQuery builds a partial update request.
	UpdateQuery = core.UpdateQuery
	// UpsertQuery builds an insert that resolves duplicate-key conflicts.
	UpsertQuery = core.UpsertQuery
	// DeleteQuery builds a delete request.
	DeleteQuery = core.DeleteQuery
	// RpcQuery builds a stored-function call.
	RpcQuery = core.RpcQuery
	// ModelQuery handles CRUD operations on struct models.
	ModelQuery = core.ModelQuery
	// Call executes one compiled request against the gateway.
	Call = core.Call

	// Cond is one filter condition in the gateway's operator grammar.
	Cond = core.Cond
	// TextSearchCond is a full-text search condition under construction.
	TextSearchCond = core.TextSearchCond
	// SelectItem is one structured select-list entry with optional alias,
	// cast, and aggregate.
	SelectItem = core.SelectItem
	// EmbedSpec describes an embedded (joined) resource in the select list.
	EmbedSpec = core.EmbedSpec

	// Param is one ordered query-string parameter of a compiled request.
	Param = core.Param
	// RequestDescriptor is one fully compiled, immutable request.
	RequestDescriptor = core.RequestDescriptor
	// ResponseEnvelope is the normalized result of one round trip.
	ResponseEnvelope = core.ResponseEnvelope

	// ErrorDescriptor is a classified execution error.
	ErrorDescriptor = core.ErrorDescriptor
	// ErrorKind is the coarse classification of an execution error.
	ErrorKind = core.ErrorKind
	// ConfigError reports builder misuse detected before any I/O.
	ConfigError = core.ConfigError

	// Cardinality is the expected row shape of a response.
	Cardinality = core.Cardinality
	// Row is a schemaless result row with typed accessors.
	Row = core.Row

	// Range is an interval literal for the range-typed array operators,
	// rendered in PostgreSQL range syntax such as [2,7).
	Range = syntax.Range
	// CountMode selects how the gateway computes the total row count.
	CountMode = syntax.CountMode
	// ReturnMode selects whether a mutation response carries the affected rows.
	ReturnMode = syntax.ReturnMode
	// Resolution selects the upsert duplicate-handling strategy.
	Resolution = syntax.Resolution
)

const (
	// CardinalityMany expects a JSON array of any length.
	CardinalityMany = core.CardinalityMany
	// CardinalitySingle expects exactly one row, unwrapped to a JSON object.
	CardinalitySingle = core.CardinalitySingle
	// CardinalityMaybeSingle expects at most one row; zero rows normalize to
	// null data instead of an error.
	CardinalityMaybeSingle = core.CardinalityMaybeSingle

	KindCardinality = core.KindCardinality
	KindConflict    = core.KindConflict
	KindValidation  = core.KindValidation
	KindNotFound    = core.KindNotFound
	KindPermission  = core.KindPermission
	KindServer      = core.KindServer
	KindTransport   = core.KindTransport

	CountNone      = syntax.CountNone
	CountExact     = syntax.CountExact
	CountPlanned   = syntax.CountPlanned
	CountEstimated = syntax.CountEstimated

	ReturnRepresentation = syntax.ReturnRepresentation
	ReturnMinimal        = syntax.ReturnMinimal

	ResolutionMergeDuplicates  = syntax.ResolutionMergeDuplicates
	ResolutionIgnoreDuplicates = syntax.ResolutionIgnoreDuplicates
)

// Sentinel errors.
var (
	// ErrNoRows is returned by One when no row matched.
	ErrNoRows = core.ErrNoRows
	// ErrInvalidModelType is returned when a model is not a struct pointer.
	ErrInvalidModelType = core.ErrInvalidModelType
	// ErrMissingPrimaryKey is returned when a model declares no primary key.
	ErrMissingPrimaryKey = core.ErrMissingPrimaryKey
)

// Re-export core functions.
var (
	NewClient           = core.NewClient
	WithHTTPClient      = core.WithHTTPClient
	WithTimeout         = core.WithTimeout
	WithSchema          = core.WithSchema
	WithAuthToken       = core.WithAuthToken
	WithHeader          = core.WithHeader
	WithLogger          = core.WithLogger
	WithTracerProvider  = core.WithTracerProvider
	WithSensitiveParams = core.WithSensitiveParams

	// Condition constructors
	Eq          = core.Eq
	Neq         = core.Neq
	Gt          = core.Gt
	Gte         = core.Gte
	Lt          = core.Lt
	Lte         = core.Lte
	Like        = core.Like
	ILike       = core.ILike
	Match       = core.Match
	IMatch      = core.IMatch
	In          = core.In
	Is          = core.Is
	Contains    = core.Contains
	ContainedBy = core.ContainedBy
	Overlaps    = core.Overlaps
	Between     = core.Between
	Filter      = core.Filter
	And         = core.And
	Or          = core.Or
	AndRaw      = core.AndRaw
	OrRaw       = core.OrRaw
	Not         = core.Not
	TextSearch  = core.TextSearch

	// Select list items
	Col     = core.Col
	RawItem = core.RawItem
	Embed   = core.Embed

	// Error classification
	AsErrorDescriptor = core.AsErrorDescriptor
	IsCardinality     = core.IsCardinality
	IsConflict        = core.IsConflict
	IsValidation      = core.IsValidation
	IsNotFound        = core.IsNotFound
	IsPermission      = core.IsPermission
	IsServer          = core.IsServer
	IsTransport       = core.IsTransport
	IsConfigError     = core.IsConfigError
)
