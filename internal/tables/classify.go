package tables

import (
	"strings"

	"finlens/internal/domain"
)

var categoryKeywords = map[domain.StatementCategory][]string{
	domain.CategoryIncomeStatement: {"revenue", "income", "cost", "expense", "profit", "ebitda", "eps"},
	domain.CategoryBalanceSheet:    {"asset", "liabilit", "equity", "share capital", "reserve", "borrowing"},
	domain.CategoryCashFlow:        {"cash flow", "operating", "investing", "financing", "net cash"},
}

// Score counts, per category, the keyword hits across a table's header labels
// and line items. Each label contributes at most one hit per keyword.
func Score(t domain.ParsedTable) map[domain.StatementCategory]int {
	labels := make([]string, 0, len(t.Headers)+len(t.Rows))
	labels = append(labels, t.Headers...)
	for _, r := range t.Rows {
		labels = append(labels, r.LineItem)
	}

	scores := make(map[domain.StatementCategory]int, len(categoryKeywords))
	for _, label := range labels {
		lower := strings.ToLower(label)
		for cat, keywords := range categoryKeywords {
			for _, kw := range keywords {
				if strings.Contains(lower, kw) {
					scores[cat]++
				}
			}
		}
	}
	return scores
}

// Classify returns the statement category with the highest keyword score.
// Ties go to the earlier category in income, balance sheet, cash flow order.
// A table with no keyword hits is unclassified.
func Classify(t domain.ParsedTable) (domain.StatementCategory, bool) {
	scores := Score(t)
	var (
		best      domain.StatementCategory
		bestScore int
	)
	for _, cat := range domain.StatementCategories {
		if scores[cat] > bestScore {
			best, bestScore = cat, scores[cat]
		}
	}
	return best, bestScore > 0
}
