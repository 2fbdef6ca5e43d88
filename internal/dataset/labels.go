package dataset

import (
	"errors"
	"strings"

	"github.com/decisionhq/recruit-ranker/internal/store"
)

// ErrInsufficientLabelDiversity is returned when, after excluding unset
// statuses, fewer than two distinct label values remain. Training cannot
// proceed on a single-class table; callers fall back to the keyword scorer.
var ErrInsufficientLabelDiversity = errors.New("fewer than two label classes in training data")

// DefaultSuccessKeywords is the default success-keyword set for label
// derivation. The set is a business rule and is expected to be overridden
// from configuration.
var DefaultSuccessKeywords = []string{"contratado", "aprovado", "documentação"}

// Labeler derives the binary success label from an outcome status string.
// Matching is case-insensitive and by substring, not exact equality: the
// source statuses are free text ("Contratado pela Decision", "Aprovado").
type Labeler struct {
	keywords []string
}

// NewLabeler builds a Labeler for the given success keywords. An empty list
// falls back to DefaultSuccessKeywords.
func NewLabeler(keywords []string) *Labeler {
	if len(keywords) == 0 {
		keywords = DefaultSuccessKeywords
	}

	lowered := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			lowered = append(lowered, keyword)
		}
	}

	return &Labeler{keywords: lowered}
}

// Label returns 1 when the status contains any success keyword.
func (l *Labeler) Label(status string) int {
	status = strings.ToLower(status)
	for _, keyword := range l.keywords {
		if strings.Contains(status, keyword) {
			return 1
		}
	}
	return 0
}

// Apply returns a new table containing only the rows with a terminal status,
// each labeled. Rows with the unset sentinel carry no signal and are
// excluded entirely. When the remaining rows hold fewer than two distinct
// labels, ErrInsufficientLabelDiversity is returned.
func (l *Labeler) Apply(table *Table) (*Table, error) {
	labeled := &Table{Rows: make([]*Row, 0, table.Len())}
	for _, row := range table.Rows {
		if row.Status == store.StatusUnset || row.Status == "" {
			continue
		}

		copied := *row
		copied.Label = l.Label(row.Status)
		labeled.Rows = append(labeled.Rows, &copied)
	}

	neg, pos := labeled.LabelCounts()
	if neg == 0 || pos == 0 {
		return nil, ErrInsufficientLabelDiversity
	}

	return labeled, nil
}
