package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/decisionhq/recruit-ranker/internal/ranking"
)

func testTable() *ranking.Table {
	return &ranking.Table{
		RequisitionID: "100",
		Title:         "Go Developer",
		Client:        "Acme Corp",
		Scorer:        ranking.ScorerModel,
		GeneratedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Entries: []ranking.Entry{
			{CandidateID: "c1", Name: "Ana", Status: "Contratado pela Decision", Score: 91},
			{CandidateID: "c2", Name: "Bruno", Status: "Desistiu", Score: 40},
		},
	}
}

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking")

	if err := ToExcel(testTable(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The .xlsx extension is appended when missing.
	f, err := excelize.OpenFile(path + ".xlsx")
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Ranked Candidates" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	client, err := f.GetCellValue("Summary", "B4")
	if err != nil {
		t.Fatalf("reading summary cell: %v", err)
	}
	if client != "Acme Corp" {
		t.Fatalf("unexpected client cell: %q", client)
	}

	name, err := f.GetCellValue("Ranked Candidates", "C2")
	if err != nil {
		t.Fatalf("reading candidate cell: %v", err)
	}
	if name != "Ana" {
		t.Fatalf("unexpected top candidate: %q", name)
	}

	score, err := f.GetCellValue("Ranked Candidates", "E3")
	if err != nil {
		t.Fatalf("reading score cell: %v", err)
	}
	if score != "40" {
		t.Fatalf("unexpected score cell: %q", score)
	}
}

func TestToExcelNilTable(t *testing.T) {
	if err := ToExcel(nil, filepath.Join(t.TempDir(), "out.xlsx")); err == nil {
		t.Fatalf("expected error for nil table")
	}
}
