package domain

import "fmt"

// Markers shared between layout-aware extraction and table detection.
const (
	TableRowTag        = "[TABLE]"
	TableBanner        = "DETECTED TABLES"
	PageMarkerPrefix   = "--- Page "
	TableSeparatorRule = 80
)

// PageMarker returns the marker line that precedes page n (1-based).
func PageMarker(n int) string {
	return fmt.Sprintf("%s%d ---", PageMarkerPrefix, n)
}
