package domain

// ExtractionMethod identifies which text extraction strategy produced a result.
type ExtractionMethod string

const (
	MethodPlainText     ExtractionMethod = "plain-text"
	MethodPrimaryParser ExtractionMethod = "primary-parser"
	MethodLayoutParser  ExtractionMethod = "structured-layout-parser"
	MethodOCR           ExtractionMethod = "ocr"
	MethodRawFiltered   ExtractionMethod = "raw-filtered"
	MethodFailed        ExtractionMethod = "failed"
)

// Confidence is the qualitative confidence attached to extracted values.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the known confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// StatementCategory names one of the three financial statements.
type StatementCategory string

const (
	CategoryIncomeStatement StatementCategory = "income_statement"
	CategoryBalanceSheet    StatementCategory = "balance_sheet"
	CategoryCashFlow        StatementCategory = "cash_flow"
)

// StatementCategories lists categories in classification tie-break order.
var StatementCategories = []StatementCategory{
	CategoryIncomeStatement,
	CategoryBalanceSheet,
	CategoryCashFlow,
}

// Title returns the human-readable statement name.
func (c StatementCategory) Title() string {
	switch c {
	case CategoryIncomeStatement:
		return "Income Statement"
	case CategoryBalanceSheet:
		return "Balance Sheet"
	case CategoryCashFlow:
		return "Cash Flow"
	}
	return string(c)
}

// AnalysisType selects which structured analysis is run on a document.
type AnalysisType string

const (
	AnalysisFinancial AnalysisType = "financial"
	AnalysisEarnings  AnalysisType = "earnings"
)

// ParseAnalysisType maps a form value to an AnalysisType, defaulting to earnings.
func ParseAnalysisType(s string) AnalysisType {
	if AnalysisType(s) == AnalysisFinancial {
		return AnalysisFinancial
	}
	return AnalysisEarnings
}

// ManagementTone is the overall tone classification of an earnings call.
type ManagementTone string

const (
	ToneOptimistic ManagementTone = "optimistic"
	ToneCautious   ManagementTone = "cautious"
	ToneNeutral    ManagementTone = "neutral"
)

// Valid reports whether t is one of the known tones.
func (t ManagementTone) Valid() bool {
	switch t {
	case ToneOptimistic, ToneCautious, ToneNeutral:
		return true
	}
	return false
}

// AnalysisSource tells whether an analysis came from the model or from local heuristics.
type AnalysisSource string

const (
	SourceModel    AnalysisSource = "model"
	SourceFallback AnalysisSource = "fallback"
)
