package core

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/coregx/pgrest/internal/syntax"
)

// ResponseEnvelope is the normalized result of one terminal call. Data is
// the raw JSON payload: an object under a single-row mode, an array
// otherwise, nil when the gateway returned nothing. Count carries the
// Content-Range total when one was requested; CountMode echoes the
// requested mode (estimated stays estimated here even though the wire
// carried planned). Execution errors land in Error as a classified value
// rather than being thrown, so callers branch without unwrapping. The
// envelope is constructed once and never mutated.
type ResponseEnvelope struct {
	Data      json.RawMessage
	Count     *int64
	CountMode syntax.CountMode
	Status    int
	Error     *ErrorDescriptor
}

// HasData reports whether the envelope carries a non-null payload.
func (e *ResponseEnvelope) HasData() bool {
	return len(e.Data) > 0 && !bytes.Equal(e.Data, []byte("null"))
}

// wireError is the gateway's JSON error envelope.
type wireError struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

// normalizeResponse turns a raw HTTP response into a ResponseEnvelope.
// The descriptor's cardinality mode steers the one normalization rule that
// depends on the originating request: a zero-row mismatch under maybeSingle
// is absorbed into null data with no error.
func normalizeResponse(desc *RequestDescriptor, status int, header http.Header, body []byte) *ResponseEnvelope {
	env := &ResponseEnvelope{
		Status:    status,
		CountMode: desc.CountMode,
	}

	if total, ok := parseContentRange(header.Get("Content-Range")); ok {
		env.Count = &total
	}

	if status >= 200 && status < 300 {
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
			env.Data = append(json.RawMessage(nil), trimmed...)
		}
		return env
	}

	we := parseWireError(body)
	if desc.Cardinality == CardinalityMaybeSingle && isZeroRowMismatch(status, we) {
		return env
	}
	env.Error = classifyError(status, we)
	return env
}

// parseWireError decodes the gateway's {message, details, hint, code}
// envelope. A body that is not that shape degrades to its raw text as the
// message.
func parseWireError(body []byte) wireError {
	var we wireError
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return we
	}
	if err := json.Unmarshal(trimmed, &we); err != nil {
		we.Message = string(trimmed)
	}
	return we
}

// classifyError maps an HTTP status and the gateway's error envelope onto
// the closed error taxonomy. The envelope fields pass through verbatim.
func classifyError(status int, we wireError) *ErrorDescriptor {
	var kind ErrorKind
	switch {
	case status == http.StatusNotAcceptable:
		kind = KindCardinality
	case status == http.StatusConflict:
		kind = KindConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = KindValidation
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindPermission
	default:
		kind = KindServer
	}

	message := we.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return &ErrorDescriptor{
		Kind:    kind,
		Message: message,
		Details: we.Details,
		Hint:    we.Hint,
		Code:    we.Code,
		Status:  status,
	}
}

// pgrstSingularCode is the gateway's error code for a result the singular
// media type cannot represent (zero rows or more than one row).
const pgrstSingularCode = "PGRST116"

// isZeroRowMismatch reports whether the error is specifically the zero-row
// flavor of a singular-mode mismatch, the one case maybeSingle absorbs.
// A multi-row mismatch always surfaces.
func isZeroRowMismatch(status int, we wireError) bool {
	if status != http.StatusNotAcceptable || we.Code != pgrstSingularCode {
		return false
	}
	return strings.Contains(we.Details, "0 rows")
}

// isZeroRowError reports whether an execution error is the zero-row
// cardinality mismatch, which the One terminal translates to ErrNoRows.
func isZeroRowError(desc *ErrorDescriptor) bool {
	return desc != nil &&
		desc.Kind == KindCardinality &&
		desc.Code == pgrstSingularCode &&
		strings.Contains(desc.Details, "0 rows")
}

// parseContentRange extracts the total from a Content-Range header of the
// form "0-24/3573" or "*/3573". An unknown total ("/*") yields no count.
func parseContentRange(value string) (int64, bool) {
	if value == "" {
		return 0, false
	}
	_, total, ok := strings.Cut(value, "/")
	if !ok || total == "" || total == "*" {
		return 0, false
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
