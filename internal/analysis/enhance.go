package analysis

import (
	"strings"

	"finlens/internal/domain"
)

// DefaultUnit is assumed when neither the model nor the text names a unit.
const DefaultUnit = "crores"

// Thresholds are the per-statement entry counts below which model output is
// supplemented from detected tables.
type Thresholds struct {
	Income   int
	Balance  int
	CashFlow int
}

// DefaultThresholds returns the standard supplement thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Income: 5, Balance: 5, CashFlow: 3}
}

// For returns the threshold for cat.
func (t Thresholds) For(cat domain.StatementCategory) int {
	switch cat {
	case domain.CategoryIncomeStatement:
		return t.Income
	case domain.CategoryBalanceSheet:
		return t.Balance
	case domain.CategoryCashFlow:
		return t.CashFlow
	}
	return 0
}

// Enhance appends table rows to statements the model left sparse and returns
// the number of entries added. A row is added only when no entry in the same
// statement has the same line item ignoring case; existing entries are never
// changed. Repeated calls add nothing further.
func Enhance(a *domain.FinancialAnalysis, tables *domain.TableClassification, th Thresholds) int {
	if a == nil || tables.Empty() {
		return 0
	}

	unit := a.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	added := 0
	for _, cat := range domain.StatementCategories {
		catTables := tables.ByCategory(cat)
		items := a.Statement(cat)
		if len(catTables) == 0 || len(items) >= th.For(cat) {
			continue
		}

		seen := make(map[string]bool, len(items))
		for _, it := range items {
			seen[strings.ToLower(it.LineItem)] = true
		}
		for _, t := range catTables {
			for _, row := range t.Rows {
				key := strings.ToLower(row.LineItem)
				if seen[key] {
					continue
				}
				seen[key] = true
				items = append(items, tableEntry(row, unit))
				added++
			}
		}
		a.SetStatement(cat, items)
	}

	if len(a.Years) == 0 {
		a.Years = tablePeriods(tables)
	}
	return added
}

func tableEntry(row domain.TableRow, unit string) domain.LineItemEntry {
	return domain.LineItemEntry{
		LineItem:   row.LineItem,
		Values:     append(domain.Cells(nil), row.Values...),
		Unit:       unit,
		Confidence: domain.ConfidenceMedium,
	}
}

// tablePeriods picks column labels for the analysis. Income statement periods
// win; another statement's periods are used only when they match the width of
// the income rows, so they cannot mislabel income figures.
func tablePeriods(tables *domain.TableClassification) domain.Cells {
	income := tables.ByCategory(domain.CategoryIncomeStatement)
	width := 0
	for _, t := range income {
		if len(t.Periods) > 0 {
			return append(domain.Cells(nil), t.Periods...)
		}
		for _, row := range t.Rows {
			width = max(width, len(row.Values))
		}
	}
	for _, cat := range domain.StatementCategories[1:] {
		for _, t := range tables.ByCategory(cat) {
			if len(t.Periods) > 0 && (width == 0 || len(t.Periods) == width) {
				return append(domain.Cells(nil), t.Periods...)
			}
		}
	}
	return nil
}
