package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"finlens/internal/domain"
	"finlens/internal/tables"
)

const financialSystemPrompt = "You are a precision financial extraction expert. Extract EXACT numbers. Preserve all formatting."

// FinancialOptions tunes the financial statement task.
type FinancialOptions struct {
	MaxChars     int
	MinLineItems int
	Thresholds   Thresholds
}

// DefaultFinancialOptions returns the standard financial task settings.
func DefaultFinancialOptions() FinancialOptions {
	return FinancialOptions{
		MaxChars:     25000,
		MinLineItems: 3,
		Thresholds:   DefaultThresholds(),
	}
}

// FinancialConfig returns the task that extracts income statement, balance
// sheet and cash flow line items.
func FinancialConfig(opts FinancialOptions) Config[domain.FinancialAnalysis] {
	return Config[domain.FinancialAnalysis]{
		Name:         "financial",
		SystemPrompt: financialSystemPrompt,
		BuildPrompt: func(text string, tc *domain.TableClassification) string {
			return BuildFinancialPrompt(text, tc, opts.MaxChars)
		},
		Temperature: 0,
		MaxTokens:   6000,
		Normalize:   normalizeFinancial,
		Richness: func(a *domain.FinancialAnalysis) error {
			if n := a.LineItemCount(); n < opts.MinLineItems {
				return fmt.Errorf("model returned %d line items, need at least %d", n, opts.MinLineItems)
			}
			return nil
		},
		Fallback: FinancialFallback,
		Enhance: func(a *domain.FinancialAnalysis, tc *domain.TableClassification) {
			Enhance(a, tc, opts.Thresholds)
		},
	}
}

// BuildFinancialPrompt embeds the table summary and at most maxChars of text.
func BuildFinancialPrompt(text string, tc *domain.TableClassification, maxChars int) string {
	var b strings.Builder
	b.WriteString("You are an expert financial data extraction AI. Extract ALL financial statement data with EXACT precision.\n\n")
	if summary := tables.Summarize(tc, tables.DefaultSummaryRows); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	b.WriteString("DOCUMENT TEXT:\n")
	b.WriteString(truncate(text, maxChars))
	b.WriteString(`

CRITICAL RULES:
1. Extract EVERY line item from financial tables
2. Preserve EXACT numbers with commas (e.g., 3,558.65)
3. Keep parentheses for negatives (e.g., (1,234) = -1,234)
4. Use EXACT line item names from document
5. Identify ALL time periods, in the same order as the values

Respond with THIS EXACT JSON structure and nothing else:

{
  "currency": "INR",
  "unit": "crores",
  "years": ["detected period 1", "detected period 2"],
  "income_statement": [
    {
      "line_item": "exact line item name",
      "values": ["exact number 1", "exact number 2"],
      "unit": "detected unit",
      "confidence": "high"
    }
  ],
  "balance_sheet": [],
  "cash_flow": [],
  "overall_confidence": "high",
  "extraction_notes": "any notes about extraction"
}`)
	return b.String()
}

func normalizeFinancial(a *domain.FinancialAnalysis) {
	if a.Unit == "" {
		a.Unit = DefaultUnit
	}
	for _, cat := range domain.StatementCategories {
		items := a.Statement(cat)
		if items == nil {
			items = []domain.LineItemEntry{}
		}
		for i := range items {
			if items[i].Unit == "" {
				items[i].Unit = a.Unit
			}
			c := domain.Confidence(strings.ToLower(string(items[i].Confidence)))
			if !c.Valid() {
				c = domain.ConfidenceHigh
			}
			items[i].Confidence = c
		}
		a.SetStatement(cat, items)
	}
	if a.Years == nil {
		a.Years = domain.Cells{}
	}
	oc := domain.Confidence(strings.ToLower(string(a.OverallConfidence)))
	if !oc.Valid() {
		oc = domain.ConfidenceMedium
	}
	a.OverallConfidence = oc
}

// FinancialFallback builds an analysis from detected tables alone. Every entry
// is tagged medium; with no tables the result is an empty low-confidence
// placeholder.
func FinancialFallback(text string, tc *domain.TableClassification) *domain.FinancialAnalysis {
	a := &domain.FinancialAnalysis{
		Currency:        DetectCurrency(text),
		Unit:            DetectUnit(text),
		Years:           domain.Cells{},
		IncomeStatement: []domain.LineItemEntry{},
		BalanceSheet:    []domain.LineItemEntry{},
		CashFlow:        []domain.LineItemEntry{},
	}

	for _, cat := range domain.StatementCategories {
		items := a.Statement(cat)
		for _, t := range tc.ByCategory(cat) {
			for _, row := range t.Rows {
				items = append(items, tableEntry(row, a.Unit))
			}
		}
		a.SetStatement(cat, items)
	}
	if years := tablePeriods(tc); years != nil {
		a.Years = years
	}

	if a.LineItemCount() == 0 {
		a.OverallConfidence = domain.ConfidenceLow
		a.ExtractionNotes = "No financial tables could be identified; manual review required"
		return a
	}
	a.OverallConfidence = domain.ConfidenceMedium
	a.ExtractionNotes = "Used fallback extraction method: line items taken from detected tables"
	return a
}

var (
	currencyINR = regexp.MustCompile(`(?i)₹|\brs\b\.?|\binr\b|\brupees?\b`)
	currencyUSD = regexp.MustCompile(`(?i)\$|\busd\b|\bdollars?\b`)
	currencyEUR = regexp.MustCompile(`(?i)€|\beur\b|\beuros?\b`)

	unitCrore   = regexp.MustCompile(`(?i)\bcrores?\b|\bcr\b\.?`)
	unitMillion = regexp.MustCompile(`(?i)\bmillions?\b|\bmn\b`)
	unitBillion = regexp.MustCompile(`(?i)\bbillions?\b|\bbn\b`)
	unitLakh    = regexp.MustCompile(`(?i)\blakhs?\b|\blacs?\b`)
)

// DetectCurrency returns the first currency whose markers appear in text,
// checking INR, USD then EUR, and defaults to INR.
func DetectCurrency(text string) string {
	switch {
	case currencyINR.MatchString(text):
		return "INR"
	case currencyUSD.MatchString(text):
		return "USD"
	case currencyEUR.MatchString(text):
		return "EUR"
	}
	return "INR"
}

// DetectUnit returns the first reporting unit named in text, defaulting to crores.
func DetectUnit(text string) string {
	switch {
	case unitCrore.MatchString(text):
		return "crores"
	case unitMillion.MatchString(text):
		return "millions"
	case unitBillion.MatchString(text):
		return "billions"
	case unitLakh.MatchString(text):
		return "lakhs"
	}
	return DefaultUnit
}
