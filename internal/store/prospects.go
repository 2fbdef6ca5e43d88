package store

import (
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
)

// StatusUnset is the sentinel status for prospects without a terminal
// outcome. Rows carrying it are excluded from training.
const StatusUnset = "N/A"

// Outcome records one historical association between a candidate and a
// requisition, along with its terminal recruiting status.
type Outcome struct {
	RequisitionID string
	CandidateID   string
	CandidateName string
	Status        string
}

type Outcomes struct {
	Items []*Outcome
}

// NewOutcomes wraps the given items into a collection.
func NewOutcomes(items []*Outcome) *Outcomes {
	return &Outcomes{Items: items}
}

// LoadOutcomes parses the prospect store: a JSON document keyed by
// requisition id, each value holding a list of prospect entries. Candidate
// codes are coerced to strings regardless of their JSON type.
func LoadOutcomes(path string) (*Outcomes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading prospects %q: %v", ErrUnavailable, path, err)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: prospects %q is not a JSON object", ErrUnavailable, path)
	}

	outcomes := &Outcomes{}
	doc.ForEach(func(key, value gjson.Result) bool {
		reqID := key.String()
		value.Get("prospects").ForEach(func(_, entry gjson.Result) bool {
			status := textAt(entry, "situacao_candidado")
			if status == "" {
				status = StatusUnset
			}
			outcomes.Items = append(outcomes.Items, &Outcome{
				RequisitionID: reqID,
				CandidateID:   entry.Get("codigo").String(),
				CandidateName: textAt(entry, "nome"),
				Status:        status,
			})
			return true
		})
		return true
	})

	return outcomes, nil
}

func (o *Outcomes) Len() int {
	return len(o.Items)
}

// ForRequisition returns the outcomes recorded for the given requisition,
// preserving duplicates: they represent historically distinct records.
func (o *Outcomes) ForRequisition(reqID string) *Outcomes {
	matched := &Outcomes{}
	for _, outcome := range o.Items {
		if outcome.RequisitionID == reqID {
			matched.Items = append(matched.Items, outcome)
		}
	}
	return matched
}

// CandidateIDs returns the deduplicated, sorted set of candidate ids
// referenced by the collection.
func (o *Outcomes) CandidateIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	for _, outcome := range o.Items {
		if outcome.CandidateID != "" {
			seen[outcome.CandidateID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
