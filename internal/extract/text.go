package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minValidLength = 100

var (
	wordPattern   = regexp.MustCompile(`[A-Za-z]{3,}`)
	numberPattern = regexp.MustCompile(`\d+(?:[,.]\d+)*`)

	excessNewlines = regexp.MustCompile(`\n{3,}`)
	horizontalWS   = regexp.MustCompile(`[ \t]+`)
	wideGap        = regexp.MustCompile(` {3,}`)
	trailingSpace  = regexp.MustCompile(`(?m)[ \t]+$`)
)

// IsValidText reports whether text looks like usable document content:
// at least 100 characters and either more than 5 words or more than 3 numbers.
func IsValidText(text string) bool {
	if len(text) < minValidLength {
		return false
	}
	words := len(wordPattern.FindAllStringIndex(text, -1))
	numbers := len(numberPattern.FindAllStringIndex(text, -1))
	return words > 5 || numbers > 3
}

// Clean normalizes extracted text: CRLF to LF, control characters removed,
// blank-line runs collapsed, horizontal whitespace collapsed, trimmed.
func Clean(text string) string {
	text = stripControl(text)
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	text = horizontalWS.ReplaceAllString(text, " ")
	text = trailingSpace.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// cleanLayout is Clean without collapsing double spaces, which carry column breaks.
func cleanLayout(text string) string {
	text = stripControl(text)
	text = strings.ReplaceAll(text, "\t", "  ")
	text = wideGap.ReplaceAllString(text, "  ")
	text = trailingSpace.ReplaceAllString(text, "")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func stripControl(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == utf8.RuneError, unicode.IsControl(r):
			return -1
		case r == ' ':
			return ' '
		}
		return r
	}, text)
}

// DecodePlainText converts uploaded text bytes to a string, dropping a UTF-8 BOM
// and replacing invalid sequences.
func DecodePlainText(data []byte) string {
	s := string(data)
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToValidUTF8(s, "\ufffd")
}
