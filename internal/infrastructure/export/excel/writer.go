package excel

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

const (
	sheetSummary  = "Summary"
	sheetFound    = "Found Documents"
	sheetISO      = "ISO Findings"
	sheetMissing  = "Missing Documents"
	dateLayout    = "2006-01-02 15:04:05 MST"
)

// Writer renders a completed audit run as an XLSX workbook.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Export(run *domain.AuditRun) ([]byte, error) {
	if run == nil || run.Report == nil {
		return nil, fmt.Errorf("audit run has no report")
	}
	report := run.Report

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetFound, sheetISO, sheetMissing} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeSummary(f, run); err != nil {
		return nil, err
	}
	if err := writeFoundDocuments(f, report.FoundDocuments); err != nil {
		return nil, err
	}
	if err := writeISOFindings(f, report.ISOFindings); err != nil {
		return nil, err
	}
	if err := writeMissing(f, report.MissingCategories); err != nil {
		return nil, err
	}

	index, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return nil, fmt.Errorf("summary sheet index: %w", err)
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, run *domain.AuditRun) error {
	report := run.Report
	rows := [][2]any{
		{"Audit ID", run.ID},
		{"Generated At", report.GeneratedAt.Format(dateLayout)},
		{"Documents Analyzed", report.DocumentCount},
		{"Compliance Score", strconv.FormatFloat(report.Score, 'f', 2, 64) + "%"},
		{"Missing Documents", len(report.MissingCategories)},
		{"WRAS Status", string(report.Verification.Status)},
		{"WRAS Lookup URL", report.Verification.URL},
	}

	for i, row := range rows {
		if err := setRow(f, sheetSummary, i+1, row[0], row[1]); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetSummary, "A", "B", 30)
}

func writeFoundDocuments(f *excelize.File, docs []domain.FoundDocument) error {
	if err := setRow(f, sheetFound, 1, "Filename", "Category", "Status"); err != nil {
		return err
	}
	for i, doc := range docs {
		if err := setRow(f, sheetFound, i+2, doc.Filename, doc.Category, doc.Status); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetFound, "A", "C", 40)
}

func writeISOFindings(f *excelize.File, findings []domain.ISOFinding) error {
	if err := setRow(f, sheetISO, 1, "Standard", "Expiry Date", "Days Remaining", "Compliance Status"); err != nil {
		return err
	}
	for i, finding := range findings {
		if err := setRow(f, sheetISO, i+2, finding.Standard, finding.ExpiryDate, finding.DaysRemaining, finding.ComplianceStatus); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetISO, "A", "D", 20)
}

func writeMissing(f *excelize.File, missing []string) error {
	if err := setRow(f, sheetMissing, 1, "Missing Category"); err != nil {
		return err
	}
	for i, category := range missing {
		if err := setRow(f, sheetMissing, i+2, category); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetMissing, "A", "A", 55)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
