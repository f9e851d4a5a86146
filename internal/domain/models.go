package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawPart is one field of a multipart/form-data body.
type RawPart struct {
	Name     string
	Filename string
	Content  []byte
}

// HasFile reports whether the part carried a filename.
func (p RawPart) HasFile() bool {
	return p.Filename != ""
}

// Text returns the part content as a string.
func (p RawPart) Text() string {
	return string(p.Content)
}

// ExtractionAttempt records the outcome of one extraction strategy.
type ExtractionAttempt struct {
	Method    ExtractionMethod `json:"method"`
	Succeeded bool             `json:"succeeded"`
	Reason    string           `json:"reason,omitempty"`
}

// ExtractionResult is the outcome of running the text extraction engine on a document.
// When Success is false, Text holds user-facing instructions and RequiresManualReview is set.
type ExtractionResult struct {
	Success              bool                `json:"success"`
	Text                 string              `json:"text"`
	Method               ExtractionMethod    `json:"method"`
	RequiresManualReview bool                `json:"requires_manual_review"`
	ArtifactName         string              `json:"artifact_name,omitempty"`
	Attempts             []ExtractionAttempt `json:"attempts,omitempty"`
}

// TableRow is a labelled row of literal numeric tokens.
type TableRow struct {
	LineItem string   `json:"line_item"`
	Values   []string `json:"values"`
}

// ParsedTable is a table recovered from extracted text.
type ParsedTable struct {
	Headers []string   `json:"headers"`
	Periods []string   `json:"periods"`
	Rows    []TableRow `json:"rows"`
}

// TableClassification buckets tables by statement. All holds every table
// regardless of category.
type TableClassification struct {
	IncomeStatement []ParsedTable `json:"income_statement"`
	BalanceSheet    []ParsedTable `json:"balance_sheet"`
	CashFlow        []ParsedTable `json:"cash_flow"`
	All             []ParsedTable `json:"all"`
}

// ByCategory returns the tables classified under cat.
func (t *TableClassification) ByCategory(cat StatementCategory) []ParsedTable {
	if t == nil {
		return nil
	}
	switch cat {
	case CategoryIncomeStatement:
		return t.IncomeStatement
	case CategoryBalanceSheet:
		return t.BalanceSheet
	case CategoryCashFlow:
		return t.CashFlow
	}
	return nil
}

// Add appends table to the bucket for cat.
func (t *TableClassification) Add(cat StatementCategory, table ParsedTable) {
	switch cat {
	case CategoryIncomeStatement:
		t.IncomeStatement = append(t.IncomeStatement, table)
	case CategoryBalanceSheet:
		t.BalanceSheet = append(t.BalanceSheet, table)
	case CategoryCashFlow:
		t.CashFlow = append(t.CashFlow, table)
	}
}

// Empty reports whether no tables were found.
func (t *TableClassification) Empty() bool {
	return t == nil || len(t.All) == 0
}

// Cells is a list of string values that also accepts JSON numbers and nulls,
// since model output is not consistent about quoting figures.
type Cells []string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cells) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single string
		if serr := json.Unmarshal(data, &single); serr != nil {
			return err
		}
		*c = Cells{single}
		return nil
	}
	out := make(Cells, 0, len(raw))
	for _, r := range raw {
		out = append(out, cellString(r))
	}
	*c = out
	return nil
}

func cellString(r json.RawMessage) string {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(r, &n); err == nil {
		return n.String()
	}
	v := strings.TrimSpace(string(r))
	if v == "null" {
		return ""
	}
	return v
}

// LineItemEntry is one line of a financial statement.
type LineItemEntry struct {
	LineItem   string     `json:"line_item"`
	Values     Cells      `json:"values"`
	Unit       string     `json:"unit"`
	Confidence Confidence `json:"confidence"`
}

// FinancialAnalysis is the structured result of a financial statement extraction.
// Years[i] corresponds to Values[i] of every entry.
type FinancialAnalysis struct {
	Currency          string          `json:"currency"`
	Unit              string          `json:"unit"`
	Years             Cells           `json:"years"`
	IncomeStatement   []LineItemEntry `json:"income_statement"`
	BalanceSheet      []LineItemEntry `json:"balance_sheet"`
	CashFlow          []LineItemEntry `json:"cash_flow"`
	OverallConfidence Confidence      `json:"overall_confidence"`
	ExtractionNotes   string          `json:"extraction_notes"`
}

// Statement returns the entries for cat.
func (a *FinancialAnalysis) Statement(cat StatementCategory) []LineItemEntry {
	switch cat {
	case CategoryIncomeStatement:
		return a.IncomeStatement
	case CategoryBalanceSheet:
		return a.BalanceSheet
	case CategoryCashFlow:
		return a.CashFlow
	}
	return nil
}

// SetStatement replaces the entries for cat.
func (a *FinancialAnalysis) SetStatement(cat StatementCategory, items []LineItemEntry) {
	switch cat {
	case CategoryIncomeStatement:
		a.IncomeStatement = items
	case CategoryBalanceSheet:
		a.BalanceSheet = items
	case CategoryCashFlow:
		a.CashFlow = items
	}
}

// LineItemCount returns the number of entries across all statements.
func (a *FinancialAnalysis) LineItemCount() int {
	return len(a.IncomeStatement) + len(a.BalanceSheet) + len(a.CashFlow)
}

// ForwardGuidance holds management's forward-looking statements by topic.
type ForwardGuidance struct {
	Revenue string `json:"revenue"`
	Margin  string `json:"margin"`
	Capex   string `json:"capex"`
	Other   string `json:"other"`
}

// EarningsAnalysis is the structured result of an earnings call transcript analysis.
type EarningsAnalysis struct {
	ManagementTone      ManagementTone  `json:"management_tone"`
	ConfidenceLevel     Confidence      `json:"confidence_level"`
	ToneExplanation     string          `json:"tone_explanation"`
	KeyPositives        []string        `json:"key_positives"`
	KeyConcerns         []string        `json:"key_concerns"`
	ForwardGuidance     ForwardGuidance `json:"forward_guidance"`
	CapacityUtilization string          `json:"capacity_utilization"`
	GrowthInitiatives   []string        `json:"growth_initiatives"`
	NotableQuotes       []string        `json:"notable_quotes"`
	AnalysisConfidence  Confidence      `json:"analysis_confidence"`
}
