package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/decisionhq/recruit-ranker/internal/ranking"
	"github.com/decisionhq/recruit-ranker/internal/store"
	"github.com/decisionhq/recruit-ranker/internal/workflow"
)

const (
	testRequisitions = `{
		"100": {
			"informacoes_basicas": {"titulo_vaga": "Go Developer", "cliente": "Acme Corp"},
			"perfil_vaga": {"competencia_tecnicas_e_comportamentais": "golang kubernetes backend"}
		}
	}`

	testProspects = `{"100": {"prospects": [
		{"codigo": "c1", "nome": "Ana", "situacao_candidado": "Contratado pela Decision"},
		{"codigo": "c2", "nome": "Bruno", "situacao_candidado": "Aprovado"},
		{"codigo": "c3", "nome": "Carla", "situacao_candidado": "Desistiu"},
		{"codigo": "c4", "nome": "Davi", "situacao_candidado": "Desistiu"}
	]}}`

	testCandidates = `{"codigo_candidato": "c1", "informacoes_profissionais": {"conhecimentos": "golang kubernetes backend grpc"}}
{"codigo_candidato": "c2", "informacoes_profissionais": {"conhecimentos": "golang kubernetes cloud backend"}}
{"codigo_candidato": "c3", "informacoes_profissionais": {"conhecimentos": "sales retail marketing negotiation"}}
{"codigo_candidato": "c4", "informacoes_profissionais": {"conhecimentos": "retail sales campaigns accounts"}}
`
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		store.RequisitionsFilename: testRequisitions,
		store.ProspectsFilename:    testProspects,
		store.CandidatesFilename:   testCandidates,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	service := workflow.New(workflow.Config{
		Downloader: &store.Downloader{Dir: dir, Logger: zap.NewNop()},
		TopN:       10,
		Logger:     zap.NewNop(),
	})
	if err := service.Load(context.Background()); err != nil {
		t.Fatalf("loading stores: %v", err)
	}

	return NewServer(service, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListRequisitions(t *testing.T) {
	server := newTestServer(t)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/requisitions", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Requisitions []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Client string `json:"client"`
		} `json:"requisitions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.Requisitions) != 1 || body.Requisitions[0].Title != "Go Developer" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRankEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rank",
		strings.NewReader(`{"requisition_id": "100", "top_n": 3}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req, 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var table ranking.Table
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if table.RequisitionID != "100" || table.Scorer != ranking.ScorerModel {
		t.Fatalf("unexpected table header: %+v", table)
	}
	if len(table.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(table.Entries))
	}
}

func TestRankEndpointErrors(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"unknown requisition", `{"requisition_id": "999"}`, http.StatusNotFound},
		{"missing id", `{}`, http.StatusBadRequest},
		{"malformed body", `not json`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/rank", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req, 30000)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}

			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body["error"] == "" {
				t.Fatalf("expected an error message, got %v", body)
			}
		})
	}
}

func TestExplainEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/explain",
		strings.NewReader(`{"requisition_id": "100", "candidate_id": "c1", "top_k": 5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.App().Test(req, 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		CandidateID   string `json:"candidate_id"`
		Contributions []struct {
			Feature string  `json:"feature"`
			Value   float64 `json:"value"`
		} `json:"contributions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.CandidateID != "c1" || len(body.Contributions) == 0 {
		t.Fatalf("unexpected body: %+v", body)
	}

	unknown := httptest.NewRequest(http.MethodPost, "/api/v1/explain",
		strings.NewReader(`{"requisition_id": "100", "candidate_id": "missing"}`))
	unknown.Header.Set("Content-Type", "application/json")

	resp, err = server.App().Test(unknown, 30000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
