// Package dburl normalizes Postgres connection strings for the ledger
// database and its migrations.
package dburl

import (
	"net/url"
	"regexp"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// Normalize adds disable_prepared_binary_result=yes unless the caller
// already set it. Key/value DSNs are returned as given.
func Normalize(raw string, disablePreparedBinary bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedBinary {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has(preparedBinaryParam) {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// Name returns the database name from a URL or a key/value DSN.
func Name(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(raw) {
		if value, ok := strings.CutPrefix(token, "dbname="); ok {
			if name := strings.Trim(value, `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

// Redact hides the password of a URL style DSN for logging.
func Redact(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		return "<dsn>"
	}
	return parsed.Redacted()
}

const maxTracedQuery = 512

var runsOfSpace = regexp.MustCompile(`\s+`)

// TraceQuery collapses whitespace and caps the length of a statement before
// it is attached to a span.
func TraceQuery(query string) string {
	query = runsOfSpace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(query) > maxTracedQuery {
		return query[:maxTracedQuery] + "..."
	}
	return query
}
