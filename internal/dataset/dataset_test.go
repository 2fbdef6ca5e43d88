package dataset

import (
	"errors"
	"testing"

	"github.com/decisionhq/recruit-ranker/internal/store"
)

func stubLookup(candidates map[string]*store.Candidate) CandidateLookup {
	return func(ids map[string]struct{}) (map[string]*store.Candidate, error) {
		found := map[string]*store.Candidate{}
		for id := range ids {
			if cand, ok := candidates[id]; ok {
				found[id] = cand
			}
		}
		return found, nil
	}
}

func TestBuilderBuild(t *testing.T) {
	reqs := store.NewRequisitions([]*store.Requisition{
		{ID: "100", Title: "Go Developer", ProfileText: "Go microservices"},
	})
	outcomes := store.NewOutcomes([]*store.Outcome{
		{RequisitionID: "100", CandidateID: "c1", CandidateName: "Ana", Status: "Contratado pela Decision"},
		{RequisitionID: "100", CandidateID: "c2", Status: "Desistiu"},
		{RequisitionID: "999", CandidateID: "c1", Status: "Encaminhado ao Requisitante"},
	})
	lookup := stubLookup(map[string]*store.Candidate{
		"c1": {ID: "c1", FullName: "Ana Souza", Summary: "Backend engineer"},
	})

	builder := &Builder{}
	table, err := builder.Build(reqs, outcomes, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", table.Len())
	}

	if table.Rows[0].DocumentText() != "Go microservices Backend engineer" {
		t.Fatalf("unexpected document text: %q", table.Rows[0].DocumentText())
	}

	// A join miss keeps the row with empty candidate text.
	if table.Rows[1].CandidateText != "" {
		t.Fatalf("missing candidate must leave text empty")
	}
	if table.Rows[1].DocumentText() != "Go microservices" {
		t.Fatalf("unexpected document text on join miss: %q", table.Rows[1].DocumentText())
	}

	// A missing requisition keeps the row with empty requisition text.
	if table.Rows[2].RequisitionText != "" {
		t.Fatalf("missing requisition must leave text empty")
	}

	// The candidate store name backfills an empty outcome name.
	if table.Rows[2].CandidateName != "Ana Souza" {
		t.Fatalf("expected backfilled name, got %q", table.Rows[2].CandidateName)
	}
	if table.Rows[0].CandidateName != "Ana" {
		t.Fatalf("outcome name must win, got %q", table.Rows[0].CandidateName)
	}
}

func TestLabelerLabel(t *testing.T) {
	labeler := NewLabeler(nil)

	cases := []struct {
		status string
		want   int
	}{
		{"Contratado pela Decision", 1},
		{"CONTRATADO COMO HUNTING", 1},
		{"Aprovado", 1},
		{"Documentação PJ", 1},
		{"Não Aprovado pelo Cliente", 1},
		{"Desistiu", 0},
		{"Prospect", 0},
	}

	for _, tc := range cases {
		if got := labeler.Label(tc.status); got != tc.want {
			t.Fatalf("Label(%q) = %d, want %d", tc.status, got, tc.want)
		}
	}
}

func TestLabelerApply(t *testing.T) {
	labeler := NewLabeler(nil)

	table := &Table{Rows: []*Row{
		{CandidateID: "c1", Status: "Contratado pela Decision"},
		{CandidateID: "c2", Status: "Desistiu"},
		{CandidateID: "c3", Status: store.StatusUnset},
		{CandidateID: "c4", Status: ""},
	}}

	labeled, err := labeler.Apply(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if labeled.Len() != 2 {
		t.Fatalf("unset statuses must be excluded, got %d rows", labeled.Len())
	}

	neg, pos := labeled.LabelCounts()
	if neg != 1 || pos != 1 {
		t.Fatalf("unexpected label counts: neg=%d pos=%d", neg, pos)
	}

	// The input table is left untouched.
	if table.Rows[0].Label != 0 {
		t.Fatalf("Apply must not mutate the input table")
	}
}

func TestLabelerApplySingleClass(t *testing.T) {
	labeler := NewLabeler(nil)

	table := &Table{Rows: []*Row{
		{CandidateID: "c1", Status: "Desistiu"},
		{CandidateID: "c2", Status: "Prospect"},
	}}

	if _, err := labeler.Apply(table); !errors.Is(err, ErrInsufficientLabelDiversity) {
		t.Fatalf("expected ErrInsufficientLabelDiversity, got %v", err)
	}
}

func TestLabelerCustomKeywords(t *testing.T) {
	labeler := NewLabeler([]string{"  HIRED  ", ""})

	if labeler.Label("Candidate hired on 2024-01-01") != 1 {
		t.Fatalf("custom keyword must match case-insensitively")
	}
	if labeler.Label("Contratado pela Decision") != 0 {
		t.Fatalf("defaults must not apply when custom keywords are set")
	}
}
