// Package dataset builds the denormalized training table joining prospect
// outcomes with their requisitions and candidate profiles.
package dataset

import (
	"fmt"

	"github.com/decisionhq/recruit-ranker/internal/store"
	"go.uber.org/zap"
)

// CandidateLookup resolves a set of candidate ids to their profiles. The
// production implementation streams the NDJSON store; tests supply stubs.
type CandidateLookup func(ids map[string]struct{}) (map[string]*store.Candidate, error)

// Row is one prospect outcome joined with its requisition and candidate.
type Row struct {
	RequisitionID   string
	CandidateID     string
	CandidateName   string
	Status          string
	RequisitionText string
	CandidateText   string
	// Label is set by a Labeler; zero until then.
	Label int
}

// DocumentText is the unit of text classification: requisition profile text
// followed by the candidate's text.
func (r *Row) DocumentText() string {
	if r.RequisitionText == "" {
		return r.CandidateText
	}
	if r.CandidateText == "" {
		return r.RequisitionText
	}
	return r.RequisitionText + " " + r.CandidateText
}

type Table struct {
	Rows []*Row
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Documents returns the document text of every row, in row order.
func (t *Table) Documents() []string {
	docs := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		docs[i] = row.DocumentText()
	}
	return docs
}

// Labels returns the label of every row, in row order.
func (t *Table) Labels() []int {
	labels := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		labels[i] = row.Label
	}
	return labels
}

// LabelCounts returns the number of negative and positive rows.
func (t *Table) LabelCounts() (neg, pos int) {
	for _, row := range t.Rows {
		if row.Label == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

// Builder assembles the training table. Join misses are tolerated: a row
// whose candidate profile is absent keeps its outcome and requisition fields
// with empty candidate text, so row counts stay stable for auditing.
type Builder struct {
	Logger *zap.Logger
}

// Build left-joins every outcome with its requisition (by requisition id)
// and candidate profile (by string-coerced candidate id). Duplicate
// (requisition, candidate) pairs are preserved as-is.
func (b *Builder) Build(reqs *store.Requisitions, outcomes *store.Outcomes, lookup CandidateLookup) (*Table, error) {
	candidates, err := lookup(store.IDSet(outcomes.CandidateIDs()))
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	table := &Table{Rows: make([]*Row, 0, outcomes.Len())}
	missingCandidates := 0
	missingRequisitions := 0

	for _, outcome := range outcomes.Items {
		row := &Row{
			RequisitionID: outcome.RequisitionID,
			CandidateID:   outcome.CandidateID,
			CandidateName: outcome.CandidateName,
			Status:        outcome.Status,
		}

		if req := reqs.FindByID(outcome.RequisitionID); req != nil {
			row.RequisitionText = req.ProfileText
		} else {
			missingRequisitions++
		}

		if candidate, ok := candidates[outcome.CandidateID]; ok {
			row.CandidateText = candidate.Text()
			if row.CandidateName == "" {
				row.CandidateName = candidate.FullName
			}
		} else {
			missingCandidates++
		}

		table.Rows = append(table.Rows, row)
	}

	if b.Logger != nil {
		b.Logger.Info("training table built",
			zap.Int("rows", table.Len()),
			zap.Int("missing_candidates", missingCandidates),
			zap.Int("missing_requisitions", missingRequisitions),
		)
	}

	return table, nil
}
