// Package export writes ranking tables to spreadsheet files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/decisionhq/recruit-ranker/internal/ranking"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
)

// ToExcel writes a ranking table as an .xlsx workbook with a summary sheet
// and a ranked candidates sheet.
func ToExcel(table *ranking.Table, outputPath string) error {
	if table == nil {
		return fmt.Errorf("ranking table is required")
	}

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(candidatesSheet)

	if err := writeSummarySheet(f, table); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}

	if err := writeCandidatesSheet(f, table); err != nil {
		return fmt.Errorf("write ranked candidates sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save excel file: %w", err)
	}

	return nil
}

func writeSummarySheet(f *excelize.File, table *ranking.Table) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	f.SetCellValue(summarySheet, "A1", "Candidate Ranking Report")
	f.SetCellStyle(summarySheet, "A1", "B1", titleStyle)

	rows := [][2]any{
		{"Requisition:", fmt.Sprintf("%s (%s)", table.Title, table.RequisitionID)},
		{"Client:", table.Client},
		{"Scorer:", table.Scorer},
		{"Generated:", table.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Candidates Scored:", len(table.Entries)},
	}

	for i, pair := range rows {
		row := i + 3
		labelCell := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, labelCell, pair[0])
		f.SetCellStyle(summarySheet, labelCell, labelCell, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), pair[1])
	}

	f.SetColWidth(summarySheet, "A", "A", 24)
	f.SetColWidth(summarySheet, "B", "B", 48)

	return nil
}

func writeCandidatesSheet(f *excelize.File, table *ranking.Table) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate ID", "Name", "Status", "Score"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(candidatesSheet, cell, header)
		f.SetCellStyle(candidatesSheet, cell, cell, headerStyle)
	}

	for i, entry := range table.Entries {
		row := i + 2
		f.SetCellValue(candidatesSheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("B%d", row), entry.CandidateID)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("C%d", row), entry.Name)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("D%d", row), entry.Status)
		f.SetCellValue(candidatesSheet, fmt.Sprintf("E%d", row), entry.Score)
	}

	f.SetColWidth(candidatesSheet, "B", "C", 32)
	f.SetColWidth(candidatesSheet, "D", "D", 28)

	return nil
}
