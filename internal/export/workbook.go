// Package export renders financial analyses as downloadable spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"finlens/internal/domain"
)

const (
	// WorkbookFilename is the attachment name of the xlsx download.
	WorkbookFilename = "financial-analysis.xlsx"
	// WorkbookContentType is the MIME type of xlsx files.
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	MetadataSheet = "Metadata"

	numberFormat = "#,##0.00_);[Red](#,##0.00)"
	headerFill   = "1E3A5F"
	highFill     = "90EE90"
	mediumFill   = "FFE4B5"
)

type styles struct {
	header int
	number int
	high   int
	medium int
	bold   int
}

// BuildWorkbook renders a one-sheet-per-statement workbook plus a metadata
// sheet. The income statement sheet is always present; balance sheet and cash
// flow sheets only when they have entries.
func BuildWorkbook(a *domain.FinancialAnalysis, at time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	first := true
	for _, cat := range domain.StatementCategories {
		items := a.Statement(cat)
		if cat != domain.CategoryIncomeStatement && len(items) == 0 {
			continue
		}
		name := cat.Title()
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("renaming sheet: %w", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := writeStatement(f, name, a, items, st); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if _, err := f.NewSheet(MetadataSheet); err != nil {
		return nil, fmt.Errorf("creating metadata sheet: %w", err)
	}
	if err := writeMetadata(f, a, at, st); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf, nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	numFmt := numberFormat

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thin,
		}},
		{&st.number, &excelize.Style{CustomNumFmt: &numFmt}},
		{&st.high, &excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{highFill}}}},
		{&st.medium, &excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{mediumFill}}}},
		{&st.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return st, fmt.Errorf("creating style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

func writeStatement(f *excelize.File, sheet string, a *domain.FinancialAnalysis, items []domain.LineItemEntry, st styles) error {
	periods := periodHeaders(a.Years, items)

	header := make([]interface{}, 0, len(periods)+3)
	header = append(header, "Line Item")
	for _, p := range periods {
		header = append(header, p)
	}
	header = append(header, "Unit", "Confidence")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	lastCol := len(header)
	lastName, _ := excelize.ColumnNumberToName(lastCol)
	if err := f.SetCellStyle(sheet, "A1", lastName+"1", st.header); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, 1, 25); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if len(periods) > 0 {
		lastPeriod, _ := excelize.ColumnNumberToName(len(periods) + 1)
		if err := f.SetColWidth(sheet, "B", lastPeriod, 20); err != nil {
			return err
		}
	}
	unitCol, _ := excelize.ColumnNumberToName(lastCol - 1)
	if err := f.SetColWidth(sheet, unitCol, lastName, 15); err != nil {
		return err
	}

	for i, item := range items {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, item.LineItem); err != nil {
			return err
		}

		for j := range periods {
			if j >= len(item.Values) {
				break
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if v, ok := ParseNumber(item.Values[j]); ok {
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, st.number); err != nil {
					return err
				}
				continue
			}
			if err := f.SetCellValue(sheet, cell, item.Values[j]); err != nil {
				return err
			}
		}

		unit := item.Unit
		if unit == "" {
			unit = a.Unit
		}
		unitCell, _ := excelize.CoordinatesToCellName(lastCol-1, row)
		if err := f.SetCellValue(sheet, unitCell, unit); err != nil {
			return err
		}
		confCell, _ := excelize.CoordinatesToCellName(lastCol, row)
		if err := f.SetCellValue(sheet, confCell, string(item.Confidence)); err != nil {
			return err
		}
		if style, ok := confidenceStyle(item.Confidence, st); ok {
			if err := f.SetCellStyle(sheet, confCell, confCell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func confidenceStyle(c domain.Confidence, st styles) (int, bool) {
	switch c {
	case domain.ConfidenceHigh:
		return st.high, true
	case domain.ConfidenceMedium:
		return st.medium, true
	}
	return 0, false
}

// periodHeaders names one column per period. Entries with more values than
// there are years get generic "Period N" columns.
func periodHeaders(years domain.Cells, items []domain.LineItemEntry) []string {
	n := len(years)
	for _, it := range items {
		if len(it.Values) > n {
			n = len(it.Values)
		}
	}
	out := make([]string, n)
	for i := range out {
		if i < len(years) && strings.TrimSpace(years[i]) != "" {
			out[i] = years[i]
		} else {
			out[i] = fmt.Sprintf("Period %d", i+1)
		}
	}
	return out
}

func writeMetadata(f *excelize.File, a *domain.FinancialAnalysis, at time.Time, st styles) error {
	notes := a.ExtractionNotes
	if notes == "" {
		notes = "None"
	}
	rows := [][]interface{}{
		{"Property", "Value"},
		{"Currency", a.Currency},
		{"Unit", a.Unit},
		{"Overall Confidence", string(a.OverallConfidence)},
		{"Extraction Date", at.Format("2006-01-02 15:04:05")},
		{"Income Statement Items", len(a.IncomeStatement)},
		{"Balance Sheet Items", len(a.BalanceSheet)},
		{"Cash Flow Items", len(a.CashFlow)},
		{"Notes", notes},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(MetadataSheet, cell, &r); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(MetadataSheet, "A1", "B1", st.bold); err != nil {
		return err
	}
	if err := f.SetColWidth(MetadataSheet, "A", "A", 25); err != nil {
		return err
	}
	return f.SetColWidth(MetadataSheet, "B", "B", 40)
}

// ParseNumber reads a financial figure such as "3,558.65", "-12.5" or the
// parenthesised negative "(1,234)".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}
