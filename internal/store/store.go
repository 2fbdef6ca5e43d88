// Package store loads the three recruitment data sources: the requisition
// document, the prospect outcome document, and the line-delimited candidate
// store. All identifiers are normalized to strings at ingestion, since the
// source data mixes numeric and string codes.
package store

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnavailable marks a store that could not be fetched or parsed. Workflows
// treat it as a hard stop.
var ErrUnavailable = errors.New("data store unavailable")

// textAt reads a string value at the given gjson path, defaulting to the
// empty string for missing or non-string fields. All free-text access goes
// through this accessor so missing data never fails a lookup.
func textAt(doc gjson.Result, path string) string {
	value := doc.Get(path)
	if !value.Exists() || value.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(value.String())
}

// joinNonEmpty joins the non-empty parts with single spaces.
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
