package tables

import (
	"fmt"
	"strings"

	"finlens/internal/domain"
)

// DefaultSummaryRows is the number of rows per table included in prompt summaries.
const DefaultSummaryRows = 5

// Summarize renders classified tables as compact text for a model prompt.
// It returns an empty string when there are no classified tables.
func Summarize(tc *domain.TableClassification, maxRows int) string {
	if tc == nil {
		return ""
	}
	if maxRows <= 0 {
		maxRows = DefaultSummaryRows
	}

	var sb strings.Builder
	for _, cat := range domain.StatementCategories {
		tables := tc.ByCategory(cat)
		if len(tables) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s (%d table(s)):\n", strings.ToUpper(cat.Title()), len(tables))
		for i, t := range tables {
			if len(t.Periods) > 0 {
				fmt.Fprintf(&sb, "Table %d periods: %s\n", i+1, strings.Join(t.Periods, " | "))
			} else {
				fmt.Fprintf(&sb, "Table %d:\n", i+1)
			}
			for j, r := range t.Rows {
				if j == maxRows {
					fmt.Fprintf(&sb, "  ... %d more row(s)\n", len(t.Rows)-maxRows)
					break
				}
				fmt.Fprintf(&sb, "  %s: %s\n", r.LineItem, strings.Join(r.Values, " | "))
			}
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "--- EXTRACTED TABLES ---" + sb.String()
}
