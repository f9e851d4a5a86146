package tables_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finlens/internal/domain"
	"finlens/internal/tables"
)

func table(labels ...string) domain.ParsedTable {
	t := domain.ParsedTable{}
	for _, l := range labels {
		t.Rows = append(t.Rows, domain.TableRow{LineItem: l, Values: []string{"1", "2"}})
	}
	return t
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		table  domain.ParsedTable
		want   domain.StatementCategory
		wantOK bool
	}{
		{"balance sheet", table("Total assets", "Shareholders equity"), domain.CategoryBalanceSheet, true},
		{"income", table("Revenue from operations", "EBITDA", "Net profit"), domain.CategoryIncomeStatement, true},
		{"cash flow", table("Net cash from operating activities", "Cash flow from financing"), domain.CategoryCashFlow, true},
		{"liabilities plural", table("Total liabilities", "Borrowings"), domain.CategoryBalanceSheet, true},
		{"tie goes to income", table("Operating profit"), domain.CategoryIncomeStatement, true},
		{"tie balance over cash", table("Reserves", "Net cash"), domain.CategoryBalanceSheet, true},
		{"majority wins over order", table("Total assets", "Other equity", "Finance cost"), domain.CategoryBalanceSheet, true},
		{"balance sheet despite income header", domain.ParsedTable{
			Headers: []string{"Statement of income and balance sheet"},
			Rows:    table("Total assets", "Shareholders equity").Rows,
		}, domain.CategoryBalanceSheet, true},
		{"no keywords", table("Headcount", "Stores"), "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tables.Classify(tc.table)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScore_HeadersCount(t *testing.T) {
	tb := table("Line A")
	tb.Headers = []string{"Cash flow statement for the year"}

	scores := tables.Score(tb)

	assert.Equal(t, 1, scores[domain.CategoryCashFlow])
	assert.Equal(t, 0, scores[domain.CategoryIncomeStatement])
}

func TestSummarize(t *testing.T) {
	income := table("Revenue", "Other income", "Cost of materials", "Employee expense", "Finance cost", "Depreciation", "Profit")
	income.Periods = []string{"2024", "2023"}
	tc := &domain.TableClassification{
		IncomeStatement: []domain.ParsedTable{income},
		BalanceSheet:    []domain.ParsedTable{table("Total assets")},
	}

	out := tables.Summarize(tc, 5)

	assert.True(t, strings.HasPrefix(out, "--- EXTRACTED TABLES ---"))
	assert.Contains(t, out, "INCOME STATEMENT (1 table(s)):")
	assert.Contains(t, out, "Table 1 periods: 2024 | 2023")
	assert.Contains(t, out, "  Revenue: 1 | 2")
	assert.Contains(t, out, "  Finance cost: 1 | 2")
	assert.NotContains(t, out, "Depreciation")
	assert.Contains(t, out, "... 2 more row(s)")
	assert.Contains(t, out, "BALANCE SHEET (1 table(s)):")
	assert.NotContains(t, out, "CASH FLOW")
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, "", tables.Summarize(nil, 5))
	assert.Equal(t, "", tables.Summarize(&domain.TableClassification{}, 5))
}
