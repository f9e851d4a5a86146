// Package tables recovers financial tables from extracted document text and
// classifies them by statement.
package tables

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"finlens/internal/domain"
)

var (
	numericToken = regexp.MustCompile(`\(\d[\d,]*(?:\.\d+)?\)|-?\d{1,3}(?:,\d{2,3})+(?:\.\d+)?|-?\d+(?:\.\d+)?`)
	bareYear     = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	dayOfMonth   = regexp.MustCompile(`^(?:0?[1-9]|[12]\d|3[01])$`)
	letters      = regexp.MustCompile(`[A-Za-z]{3,}`)
	cellSplit    = regexp.MustCompile(`\t+| {2,}`)

	headerVocab  = regexp.MustCompile(`(?i)quarter|ended|as at|year|month|period|particulars`)
	periodCell   = regexp.MustCompile(`(?i)\d{4}|\d{1,2}\s+[a-z]+|\b[QH][1-4]\s*FY\s*'?\d{2}`)
	periodInline = regexp.MustCompile(`(?i)\b\d{1,2}\s+[a-z]{3,9}\.?,?\s+(?:19|20)\d{2}\b|\b[QH][1-4]\s*FY\s*'?\d{2,4}\b|\bFY\s*'?(?:19|20)?\d{2}(?:-\d{2})?\b|\b(?:19|20)\d{2}\b`)
)

const labelTrimSet = " \t:-|(–"

const minImplicitRun = 2

type scanMode int

const (
	modeNone scanMode = iota
	modeBanner
	modeTagged
)

// Extract scans text for tables and classifies them.
//
// Tables are delimited by a "DETECTED TABLES" banner (closed by a rule of 80
// or more '=' characters) or by runs of "[TABLE]"-tagged rows. When the text
// has no such markers, runs of consecutive label-plus-figures lines are
// treated as tables.
func Extract(text string) *domain.TableClassification {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	found := markedTables(lines)
	if len(found) == 0 {
		found = implicitTables(lines)
	}

	result := &domain.TableClassification{}
	for _, t := range found {
		result.All = append(result.All, t)
		if cat, ok := Classify(t); ok {
			result.Add(cat, t)
		}
	}
	return result
}

func markedTables(lines []string) []domain.ParsedTable {
	var (
		tables  []domain.ParsedTable
		current []string
		mode    = modeNone
	)
	flush := func() {
		if len(current) > 0 {
			if t, ok := parseTable(current); ok {
				tables = append(tables, t)
			}
		}
		current = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case isSeparatorRule(line):
			flush()
			mode = modeNone
		case strings.Contains(strings.ToUpper(line), domain.TableBanner):
			flush()
			mode = modeBanner
		case mode == modeBanner:
			if line == "" || strings.HasPrefix(line, domain.PageMarkerPrefix) {
				continue
			}
			current = append(current, stripTag(line))
		case strings.HasPrefix(line, domain.TableRowTag):
			if mode != modeTagged {
				flush()
				mode = modeTagged
			}
			current = append(current, stripTag(line))
		case mode == modeTagged && line != "":
			flush()
			mode = modeNone
		}
	}
	flush()
	return tables
}

func implicitTables(lines []string) []domain.ParsedTable {
	var (
		tables []domain.ParsedTable
		run    []string
		header string
	)
	flush := func() {
		if len(run) >= minImplicitRun {
			rows := run
			if header == "" && isHeaderLine(run[0]) {
				header, rows = run[0], run[1:]
			}
			for _, seg := range splitByCategory(rows) {
				block := seg
				if header != "" {
					block = append([]string{header}, seg...)
				}
				if t, ok := parseTable(block); ok {
					tables = append(tables, t)
				}
			}
		}
		run = nil
		header = ""
	}

	prev := ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if isRowLike(line) {
			if len(run) == 0 && !isHeaderLine(line) && isHeaderLine(prev) {
				header = prev
			}
			run = append(run, line)
		} else {
			flush()
		}
		if line != "" {
			prev = line
		}
	}
	flush()
	return tables
}

// splitByCategory cuts a run of plain-text rows where the statement changes,
// so "Total assets" following income rows lands in its own table. A single
// off-category row between rows of the current category stays in place.
func splitByCategory(run []string) [][]string {
	cats := make([]domain.StatementCategory, len(run))
	known := make([]bool, len(run))
	for i, line := range run {
		if row, ok := ParseRow(line, i+1); ok {
			cats[i], known[i] = Classify(domain.ParsedTable{Rows: []domain.TableRow{row}})
		}
	}

	var (
		segs   [][]string
		start  int
		segCat domain.StatementCategory
		hasCat bool
	)
	for i := range run {
		if !known[i] {
			continue
		}
		if !hasCat {
			segCat, hasCat = cats[i], true
			continue
		}
		if cats[i] == segCat || nextKnown(cats, known, i+1) == segCat {
			continue
		}
		segs = append(segs, run[start:i])
		start, segCat = i, cats[i]
	}
	return append(segs, run[start:])
}

func nextKnown(cats []domain.StatementCategory, known []bool, from int) domain.StatementCategory {
	for i := from; i < len(cats); i++ {
		if known[i] {
			return cats[i]
		}
	}
	return ""
}

func isSeparatorRule(line string) bool {
	return len(line) >= domain.TableSeparatorRule && strings.Trim(line, "=") == ""
}

func stripTag(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, domain.TableRowTag))
}

// isRowLike reports whether line has a label of at least three letters followed
// by at least two figures.
func isRowLike(line string) bool {
	tokens := numericTokens(line)
	if len(tokens) < 2 {
		return false
	}
	return letters.MatchString(line[:tokens[0][0]])
}

// isHeaderLine reports whether line labels columns rather than carrying figures:
// it uses header vocabulary or consists of bare years, and holds no value that
// is neither a year nor a day of the month.
func isHeaderLine(line string) bool {
	if line == "" {
		return false
	}
	tokens := numericTokens(line)
	years := 0
	for _, tok := range tokens {
		v := line[tok[0]:tok[1]]
		switch {
		case bareYear.MatchString(v):
			years++
		case dayOfMonth.MatchString(v):
		default:
			return false
		}
	}
	if headerVocab.MatchString(line) {
		return true
	}
	return years > 0 && years == len(tokens)
}

// numericTokens returns the [start, end) offsets of figures in line that stand
// on their own, so "FY2024" or "Q3" do not count as values.
func numericTokens(line string) [][]int {
	var out [][]int
	for _, loc := range numericToken.FindAllStringIndex(line, -1) {
		if loc[0] > 0 {
			r, _ := utf8.DecodeLastRuneInString(line[:loc[0]])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == ',' {
				continue
			}
		}
		if loc[1] < len(line) {
			r, _ := utf8.DecodeRuneInString(line[loc[1]:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		out = append(out, loc)
	}
	return out
}

// ParseRow splits a table line into a label and its literal numeric tokens.
// It returns false when the line has no figures.
func ParseRow(line string, index int) (domain.TableRow, bool) {
	tokens := numericTokens(line)
	if len(tokens) == 0 {
		return domain.TableRow{}, false
	}
	values := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		values = append(values, line[tok[0]:tok[1]])
	}
	label := strings.TrimRight(strings.TrimSpace(line[:tokens[0][0]]), labelTrimSet)
	label = strings.TrimSpace(label)
	if label == "" {
		label = fmt.Sprintf("Line Item %d", index)
	}
	return domain.TableRow{LineItem: label, Values: values}, true
}

func parseTable(lines []string) (domain.ParsedTable, bool) {
	var t domain.ParsedTable
	if len(lines) == 0 {
		return t, false
	}

	start := 0
	if isHeaderLine(lines[0]) {
		t.Headers, t.Periods = headerCells(lines[0])
		start = 1
	}

	for _, line := range lines[start:] {
		row, ok := ParseRow(line, len(t.Rows)+1)
		if !ok {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return t, false
	}
	return t, true
}

func headerCells(line string) (headers, periods []string) {
	cells := cellSplit.Split(strings.TrimSpace(line), -1)
	if len(cells) > 1 {
		for _, c := range cells {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if headerVocab.MatchString(c) {
				headers = append(headers, c)
			}
			if periodCell.MatchString(c) {
				periods = append(periods, c)
			}
		}
		return headers, periods
	}

	if headerVocab.MatchString(line) {
		headers = append(headers, strings.TrimSpace(line))
	}
	for _, p := range periodInline.FindAllString(line, -1) {
		periods = append(periods, strings.TrimSpace(p))
	}
	return headers, periods
}
