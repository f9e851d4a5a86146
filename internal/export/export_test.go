package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finlens/internal/domain"
	"finlens/internal/export"
)

func sampleAnalysis() *domain.FinancialAnalysis {
	return &domain.FinancialAnalysis{
		Currency: "INR",
		Unit:     "crores",
		Years:    domain.Cells{"FY24", "FY23"},
		IncomeStatement: []domain.LineItemEntry{
			{LineItem: "Revenue from operations", Values: domain.Cells{"3,558.65", "3,191.32"}, Unit: "crores", Confidence: domain.ConfidenceHigh},
			{LineItem: "Exceptional items", Values: domain.Cells{"(12.50)", "N/A"}, Confidence: domain.ConfidenceMedium},
		},
		CashFlow: []domain.LineItemEntry{
			{LineItem: "Net cash from operating activities", Values: domain.Cells{"450", "410", "390"}, Unit: "crores", Confidence: domain.ConfidenceLow},
		},
		BalanceSheet:      []domain.LineItemEntry{},
		OverallConfidence: domain.ConfidenceHigh,
	}
}

var extractedAt = time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)

func openWorkbook(t *testing.T, a *domain.FinancialAnalysis) *excelize.File {
	t.Helper()
	buf, err := export.BuildWorkbook(a, extractedAt)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestBuildWorkbook_Sheets(t *testing.T) {
	f := openWorkbook(t, sampleAnalysis())

	assert.Equal(t, []string{"Income Statement", "Cash Flow", "Metadata"}, f.GetSheetList())
}

func TestBuildWorkbook_EmptyAnalysisKeepsIncomeSheet(t *testing.T) {
	f := openWorkbook(t, &domain.FinancialAnalysis{})

	assert.Equal(t, []string{"Income Statement", "Metadata"}, f.GetSheetList())
	rows, err := f.GetRows("Income Statement")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Line Item", "Unit", "Confidence"}, rows[0])
}

func TestBuildWorkbook_IncomeStatementCells(t *testing.T) {
	f := openWorkbook(t, sampleAnalysis())
	sheet := "Income Statement"

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Line Item", "FY24", "FY23", "Unit", "Confidence"}, rows[0])

	raw, err := f.GetCellValue(sheet, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3558.65", raw)

	raw, err = f.GetCellValue(sheet, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "-12.5", raw)

	literal, err := f.GetCellValue(sheet, "C3")
	require.NoError(t, err)
	assert.Equal(t, "N/A", literal)

	unit, err := f.GetCellValue(sheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "crores", unit)

	conf, err := f.GetCellValue(sheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "high", conf)

	width, err := f.GetColWidth(sheet, "A")
	require.NoError(t, err)
	assert.Equal(t, float64(40), width)
}

func TestBuildWorkbook_ConfidenceFills(t *testing.T) {
	f := openWorkbook(t, sampleAnalysis())

	fill := func(sheet, cell string) []string {
		id, err := f.GetCellStyle(sheet, cell)
		require.NoError(t, err)
		st, err := f.GetStyle(id)
		require.NoError(t, err)
		return st.Fill.Color
	}

	assert.Equal(t, []string{"90EE90"}, fill("Income Statement", "E2"))
	assert.Equal(t, []string{"FFE4B5"}, fill("Income Statement", "E3"))
	assert.Empty(t, fill("Cash Flow", "F2"))
}

func TestBuildWorkbook_ExtraValuesGetPeriodColumns(t *testing.T) {
	f := openWorkbook(t, sampleAnalysis())

	rows, err := f.GetRows("Cash Flow")
	require.NoError(t, err)
	assert.Equal(t, []string{"Line Item", "FY24", "FY23", "Period 3", "Unit", "Confidence"}, rows[0])
}

func TestBuildWorkbook_Metadata(t *testing.T) {
	f := openWorkbook(t, sampleAnalysis())

	rows, err := f.GetRows(export.MetadataSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Property", "Value"},
		{"Currency", "INR"},
		{"Unit", "crores"},
		{"Overall Confidence", "high"},
		{"Extraction Date", "2024-05-14 09:30:00"},
		{"Income Statement Items", "2"},
		{"Balance Sheet Items", "0"},
		{"Cash Flow Items", "1"},
		{"Notes", "None"},
	}, rows)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3,558.65", 3558.65, true},
		{"-12", -12, true},
		{"(1,234)", -1234, true},
		{" 42 ", 42, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"12%", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			v, ok := export.ParseNumber(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.InDelta(t, tc.want, v, 1e-9)
		})
	}
}

func TestCSVWriter_WriteAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewCSVWriter(&buf).WriteAnalysis(sampleAnalysis()))

	require.True(t, bytes.HasPrefix(buf.Bytes(), export.BOM))
	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(export.BOM):])).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Statement", "Line Item", "FY24", "FY23", "Period 3", "Unit", "Confidence"}, rows[0])
	assert.Equal(t, []string{"Income Statement", "Exceptional items", "(12.50)", "N/A", "", "crores", "medium"}, rows[2])
	assert.Equal(t, "Cash Flow", rows[3][0])
	assert.Equal(t, "390", rows[3][4])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Annual Report 2024.pdf", "Annual_Report_2024_pdf"},
		{"  spaced  ", "spaced"},
		{"a///b", "a_b"},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, export.SanitizeFilename(tc.in))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "Q4_results_2024-05-14.csv", export.BuildFilename("Q4 results", "csv", extractedAt))
	assert.Equal(t, "financial-analysis_2024-05-14.xlsx", export.BuildFilename("!!", "xlsx", extractedAt))
}
