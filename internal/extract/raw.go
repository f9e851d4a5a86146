package extract

import (
	"context"
	"regexp"
	"strings"

	"finlens/internal/domain"
)

var (
	nonPrintable = regexp.MustCompile(`[^\x20-\x7E\n]+`)
	rawWord      = regexp.MustCompile(`[A-Za-z]{3,}`)
	rawNumber    = regexp.MustCompile(`\d+(?:[,.]\d+)*`)
)

// RawScan decodes the file bytes as Latin-1 and keeps only lines that look
// like prose or figures. It is the last resort for PDFs whose text layer the
// parsers cannot read.
type RawScan struct{}

func (RawScan) Method() domain.ExtractionMethod { return domain.MethodRawFiltered }

func (RawScan) Extract(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := string(latin1(data))
	text = strings.ReplaceAll(text, "\r", "\n")
	text = nonPrintable.ReplaceAllString(text, " ")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(horizontalWS.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if len(rawWord.FindAllStringIndex(line, -1)) > 2 || len(rawNumber.FindAllStringIndex(line, -1)) > 1 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

// latin1 maps each byte to the rune of the same value so binary data never
// produces invalid UTF-8.
func latin1(data []byte) []rune {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = rune(b)
	}
	return out
}
