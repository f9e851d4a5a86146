package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"finlens/internal/domain"
)

// CSVContentType is the MIME type of the CSV download.
const CSVContentType = "text/csv; charset=utf-8"

// BOM is the UTF-8 byte order mark, written first so spreadsheet tools pick
// the right encoding.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes a financial analysis as one flat table of line items.
type CSVWriter struct {
	out io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w)}
}

// WriteAnalysis writes the BOM, a header row and one row per line item across
// all statements.
func (w *CSVWriter) WriteAnalysis(a *domain.FinancialAnalysis) error {
	if _, err := w.out.Write(BOM); err != nil {
		return err
	}

	var items []domain.LineItemEntry
	for _, cat := range domain.StatementCategories {
		items = append(items, a.Statement(cat)...)
	}
	periods := periodHeaders(a.Years, items)

	header := append([]string{"Statement", "Line Item"}, periods...)
	header = append(header, "Unit", "Confidence")
	if err := w.csv.Write(header); err != nil {
		return err
	}

	for _, cat := range domain.StatementCategories {
		for _, item := range a.Statement(cat) {
			if err := w.csv.Write(entryRow(cat, item, len(periods), a.Unit)); err != nil {
				return err
			}
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

func entryRow(cat domain.StatementCategory, item domain.LineItemEntry, periods int, unit string) []string {
	row := make([]string, 0, periods+4)
	row = append(row, cat.Title(), item.LineItem)
	for i := 0; i < periods; i++ {
		v := ""
		if i < len(item.Values) {
			v = item.Values[i]
		}
		row = append(row, v)
	}
	if item.Unit != "" {
		unit = item.Unit
	}
	return append(row, unit, string(item.Confidence))
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	multiUnderscore = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename makes name safe for a Content-Disposition header.
// Characters other than letters, digits, hyphen and underscore become "_",
// runs of underscores collapse, and the result is capped at 100 bytes.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "{sanitized base}_{YYYY-MM-DD}.{ext}". An empty base
// becomes "financial-analysis".
func BuildFilename(base, ext string, at time.Time) string {
	s := SanitizeFilename(base)
	if s == "" {
		s = "financial-analysis"
	}
	return fmt.Sprintf("%s_%s.%s", s, at.Format("2006-01-02"), ext)
}
