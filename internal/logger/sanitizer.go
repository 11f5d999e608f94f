package logger

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// Sanitizer masks sensitive data in request headers and query strings to
// prevent accidental logging of secrets. It detects sensitive fields based on
// header names and filter column names.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	// Compiled patterns for faster matching
	patterns []*regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		// Default sensitive field names (common patterns)
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"proxy-authorization", "cookie", "set-cookie",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	// Compile patterns for efficient matching
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		// Match field name case-insensitively with word boundaries
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		patterns = append(patterns, pattern)
	}

	return &Sanitizer{
		sensitiveFields: sensitiveFields,
		maskValue:       "***REDACTED***",
		patterns:        patterns,
	}
}

// MaskHeaders returns a copy of the headers with sensitive values replaced by
// the mask value. The original headers are not modified.
func (s *Sanitizer) MaskHeaders(headers http.Header) http.Header {
	if len(headers) == 0 {
		return headers
	}

	masked := make(http.Header, len(headers))
	for name, values := range headers {
		if s.isSensitiveField(name) {
			masked[name] = []string{s.maskValue}
			continue
		}
		copied := make([]string, len(values))
		copy(copied, values)
		masked[name] = copied
	}
	return masked
}

// MaskQuery masks the values of sensitive filter parameters in a rendered
// query string. The parameter key is the column name, so password=eq.hunter2
// becomes password=***REDACTED***. The input is not modified.
func (s *Sanitizer) MaskQuery(query string) string {
	if query == "" || !s.containsSensitivePattern(query) {
		return query
	}

	pairs := strings.Split(query, "&")
	for i, pair := range pairs {
		key, _, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if s.isSensitiveField(key) {
			pairs[i] = key + "=" + s.maskValue
		}
	}
	return strings.Join(pairs, "&")
}

// isSensitiveField checks a single header or column name against the
// sensitive field patterns.
func (s *Sanitizer) isSensitiveField(name string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// containsSensitivePattern checks if a query string mentions any sensitive
// field at all, allowing the common case to skip the per-pair scan.
func (s *Sanitizer) containsSensitivePattern(query string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(query) {
			return true
		}
	}
	return false
}

// FormatHeaders converts masked headers to a compact single-line
// representation for logging. Header names are emitted in sorted order so log
// lines are stable.
func (s *Sanitizer) FormatHeaders(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+s.truncate(strings.Join(headers[name], ";")))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// truncate shortens very long values to prevent log pollution.
func (s *Sanitizer) truncate(v string) string {
	const maxLen = 100
	if len(v) > maxLen {
		return v[:maxLen] + "..."
	}
	return v
}
