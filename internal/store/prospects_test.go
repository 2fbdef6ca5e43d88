package store

import (
	"path/filepath"
	"testing"
)

func TestLoadOutcomes(t *testing.T) {
	path := writeTempFile(t, "prospects.json", `{
		"5185": {
			"titulo": "Go Developer",
			"prospects": [
				{"codigo": "31000", "nome": "Ana Souza", "situacao_candidado": "Contratado pela Decision"},
				{"codigo": 31001, "nome": "Bruno Lima", "situacao_candidado": ""},
				{"codigo": "31002", "nome": "Carla Dias", "situacao_candidado": "Não Aprovado pelo Cliente"}
			]
		},
		"4531": {"prospects": []}
	}`)

	outcomes, err := LoadOutcomes(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcomes.Len() != 3 {
		t.Fatalf("expected 3 outcomes, got %d", outcomes.Len())
	}

	// Numeric candidate codes are coerced to strings.
	if outcomes.Items[1].CandidateID != "31001" {
		t.Fatalf("expected coerced candidate id, got %q", outcomes.Items[1].CandidateID)
	}

	if outcomes.Items[1].Status != StatusUnset {
		t.Fatalf("empty status must map to the unset sentinel, got %q", outcomes.Items[1].Status)
	}

	if outcomes.Items[0].CandidateName != "Ana Souza" {
		t.Fatalf("unexpected name: %q", outcomes.Items[0].CandidateName)
	}

	forReq := outcomes.ForRequisition("5185")
	if forReq.Len() != 3 {
		t.Fatalf("expected 3 outcomes for requisition, got %d", forReq.Len())
	}
	if outcomes.ForRequisition("4531").Len() != 0 {
		t.Fatalf("expected no outcomes for empty prospect list")
	}
}

func TestOutcomesCandidateIDs(t *testing.T) {
	outcomes := NewOutcomes([]*Outcome{
		{RequisitionID: "1", CandidateID: "b"},
		{RequisitionID: "1", CandidateID: "a"},
		{RequisitionID: "2", CandidateID: "b"},
		{RequisitionID: "2", CandidateID: ""},
	})

	ids := outcomes.CandidateIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected deduplicated sorted ids, got %v", ids)
	}
}

func TestLoadOutcomesUnavailable(t *testing.T) {
	if _, err := LoadOutcomes(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
