package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestEnsureDataConvertsApplicants(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		RequisitionsFilename:  `{}`,
		ProspectsFilename:     `{}`,
		RawApplicantsFilename: `{"31000": {"informacoes_pessoais": {"nome_completo": "Ana Souza"}}, "31001": {"cv_pt": "currículo"}}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	d := &Downloader{Dir: dir, Logger: zap.NewNop()}
	if err := d.EnsureData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The raw store is rewritten as NDJSON with the id injected per record.
	found, err := FetchCandidates(d.CandidatesPath(), IDSet([]string{"31000", "31001"}))
	if err != nil {
		t.Fatalf("fetching converted candidates: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(found))
	}
	if found["31000"].FullName != "Ana Souza" {
		t.Fatalf("unexpected candidate: %+v", found["31000"])
	}
	if found["31001"].CVPT != "currículo" {
		t.Fatalf("unexpected candidate: %+v", found["31001"])
	}
}

func TestEnsureDataSkipsExisting(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		RequisitionsFilename: `{}`,
		ProspectsFilename:    `{}`,
		CandidatesFilename:   ``,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	// BaseURL is intentionally unreachable: present files must never be
	// fetched again.
	d := &Downloader{Dir: dir, BaseURL: "http://127.0.0.1:1", Logger: zap.NewNop()}
	if err := d.EnsureData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
