// Package ranking holds the per-candidate score table produced for one
// requisition, shared by the CLI output, the xlsx export, and the HTTP API.
package ranking

import (
	"math"
	"sort"
	"time"
)

// Scorer kinds recorded on a table so consumers can tell how the scores
// were produced.
const (
	ScorerModel     = "model"
	ScorerHeuristic = "heuristic"
)

// Entry is one scored candidate.
type Entry struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Score       int    `json:"score"`
}

// Table is the ranked result for one requisition: entries sorted by score
// descending (ties broken by candidate id), truncated to a fixed top-N.
type Table struct {
	RequisitionID string    `json:"requisition_id"`
	Title         string    `json:"title"`
	Client        string    `json:"client"`
	Scorer        string    `json:"scorer"`
	GeneratedAt   time.Time `json:"generated_at"`
	Entries       []Entry   `json:"entries"`
}

// SortAndTruncate orders the entries and keeps the top n (non-positive n
// keeps everything).
func (t *Table) SortAndTruncate(n int) {
	sort.SliceStable(t.Entries, func(i, j int) bool {
		if t.Entries[i].Score != t.Entries[j].Score {
			return t.Entries[i].Score > t.Entries[j].Score
		}
		return t.Entries[i].CandidateID < t.Entries[j].CandidateID
	})
	if n > 0 && len(t.Entries) > n {
		t.Entries = t.Entries[:n]
	}
}

// ScoreFromProbability converts a success probability to the 0-100 integer
// scale, rounding down.
func ScoreFromProbability(p float64) int {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return int(math.Floor(p * 100))
}
