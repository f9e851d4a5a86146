package tables_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/internal/domain"
	"finlens/internal/tables"
)

func TestParseRow(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		label  string
		values []string
	}{
		{"two periods", "Revenue from operations   1,200.50   1,050.25", "Revenue from operations", []string{"1,200.50", "1,050.25"}},
		{"negative in parentheses", "Exceptional items (1,234) 56", "Exceptional items", []string{"(1,234)", "56"}},
		{"indian grouping", "Total income 1,23,456.78 98,765", "Total income", []string{"1,23,456.78", "98,765"}},
		{"minus sign", "Other gains: -12.5 4", "Other gains", []string{"-12.5", "4"}},
		{"fiscal label ignored", "EPS FY2024 (Rs) 12.4 10.1", "EPS FY2024 (Rs)", []string{"12.4", "10.1"}},
		{"no label", "  100 200", "Line Item 3", []string{"100", "200"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row, ok := tables.ParseRow(tc.line, 3)
			require.True(t, ok)
			assert.Equal(t, tc.label, row.LineItem)
			assert.Equal(t, tc.values, row.Values)
		})
	}
}

func TestParseRow_NoFigures(t *testing.T) {
	_, ok := tables.ParseRow("Expenses", 1)
	assert.False(t, ok)
}

func TestExtract_TaggedRows(t *testing.T) {
	text := strings.Join([]string{
		"--- Page 1 ---",
		"Statement of profit and loss",
		"[TABLE] Particulars  Quarter ended 31 Mar 2024  31 Dec 2023",
		"[TABLE] Revenue from operations  1,200  1,100",
		"",
		"[TABLE] Total expenses  (900)  (850)",
		"Notes follow",
		"[TABLE] Total assets  5,000  4,800",
		"[TABLE] Shareholders equity  2,000  1,900",
	}, "\n")

	tc := tables.Extract(text)

	require.Len(t, tc.All, 2)

	income := tc.IncomeStatement
	require.Len(t, income, 1)
	assert.Equal(t, []string{"Particulars", "Quarter ended 31 Mar 2024"}, income[0].Headers)
	assert.Equal(t, []string{"Quarter ended 31 Mar 2024", "31 Dec 2023"}, income[0].Periods)
	require.Len(t, income[0].Rows, 2)
	assert.Equal(t, "Total expenses", income[0].Rows[1].LineItem)
	assert.Equal(t, []string{"(900)", "(850)"}, income[0].Rows[1].Values)

	require.Len(t, tc.BalanceSheet, 1)
	assert.Equal(t, "Total assets", tc.BalanceSheet[0].Rows[0].LineItem)
	assert.Empty(t, tc.CashFlow)
}

func TestExtract_BannerTableClosedByRule(t *testing.T) {
	text := strings.Join([]string{
		"DETECTED TABLES",
		"--- Page 2 ---",
		"Net cash from operating activities 450 390",
		"",
		"Net cash used in investing activities (120) (80)",
		strings.Repeat("=", 80),
		"Revenue 10 20",
	}, "\n")

	tc := tables.Extract(text)

	require.Len(t, tc.All, 1)
	require.Len(t, tc.CashFlow, 1)
	assert.Len(t, tc.CashFlow[0].Rows, 2)
}

func TestExtract_ZeroRowTablesDiscarded(t *testing.T) {
	text := "[TABLE] Particulars  Year ended 2024  2023\nplain prose line"

	tc := tables.Extract(text)

	assert.True(t, tc.Empty())
}

func TestExtract_ImplicitTablesFromPlainText(t *testing.T) {
	text := strings.Join([]string{
		"ACME Ltd results for the year",
		"Particulars 2024 2023",
		"Revenue from operations 1,200 1,050",
		"Other income 40 35",
		"Profit before tax 300 260",
		"",
		"Management commentary follows here.",
		"Only one row 10 20",
	}, "\n")

	tc := tables.Extract(text)

	require.Len(t, tc.All, 1)
	require.Len(t, tc.IncomeStatement, 1)
	table := tc.IncomeStatement[0]
	assert.Equal(t, []string{"2024", "2023"}, table.Periods)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Revenue from operations", table.Rows[0].LineItem)
}

func TestExtract_UnclassifiedTableOnlyInAll(t *testing.T) {
	text := "[TABLE] Widgets shipped 10 20\n[TABLE] Gadgets shipped 5 7"

	tc := tables.Extract(text)

	assert.Len(t, tc.All, 1)
	assert.Empty(t, tc.IncomeStatement)
	assert.Empty(t, tc.BalanceSheet)
	assert.Empty(t, tc.CashFlow)
}

func TestExtract_DataRowWithYearWordIsNotHeader(t *testing.T) {
	text := "[TABLE] Profit for the year 1,200 980\n[TABLE] Total comprehensive income 1,250 1,000"

	tc := tables.Extract(text)

	require.Len(t, tc.All, 1)
	assert.Len(t, tc.All[0].Rows, 2)
	assert.Empty(t, tc.All[0].Periods)
}

func TestExtract_ImplicitRunSplitsAtStatementChange(t *testing.T) {
	tc := tables.Extract("Revenue from operations  1,000  900\nTotal assets  5,000  4,500\n")

	require.Len(t, tc.All, 2)
	require.Len(t, tc.IncomeStatement, 1)
	require.Len(t, tc.BalanceSheet, 1)
	assert.Equal(t, []domain.TableRow{{LineItem: "Revenue from operations", Values: []string{"1,000", "900"}}}, tc.IncomeStatement[0].Rows)
	assert.Equal(t, []domain.TableRow{{LineItem: "Total assets", Values: []string{"5,000", "4,500"}}}, tc.BalanceSheet[0].Rows)
}

func TestExtract_ImplicitRunKeepsStrayRow(t *testing.T) {
	text := strings.Join([]string{
		"Particulars 2024 2023",
		"Net cash from operating activities 450 390",
		"Income tax paid (60) (55)",
		"Net cash used in investing activities (120) (80)",
		"Total assets 5,000 4,500",
		"Other equity 2,000 1,800",
	}, "\n")

	tc := tables.Extract(text)

	require.Len(t, tc.CashFlow, 1)
	assert.Len(t, tc.CashFlow[0].Rows, 3)
	assert.Equal(t, []string{"2024", "2023"}, tc.CashFlow[0].Periods)
	require.Len(t, tc.BalanceSheet, 1)
	assert.Len(t, tc.BalanceSheet[0].Rows, 2)
	assert.Equal(t, []string{"2024", "2023"}, tc.BalanceSheet[0].Periods)
	assert.Empty(t, tc.IncomeStatement)
}
