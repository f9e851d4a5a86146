package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"finlens/internal/domain"
)

// Strategy is one way of turning document bytes into text.
type Strategy interface {
	Method() domain.ExtractionMethod
	Extract(ctx context.Context, data []byte) (string, error)
}

// openPDF wraps pdf.NewReader, which panics on some malformed inputs.
func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// PrimaryParser reads the PDF text layer in content-stream order.
type PrimaryParser struct{}

func (PrimaryParser) Method() domain.ExtractionMethod { return domain.MethodPrimaryParser }

func (PrimaryParser) Extract(ctx context.Context, data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("primary parser panic: %v", rec)
		}
	}()

	r, err := openPDF(data)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading text layer: %w", err)
	}
	return Clean(string(raw)), nil
}

const (
	rowBand        = 5.0
	spaceGapRatio  = 0.25
	columnGapRatio = 2.0
)

var rowNumber = regexp.MustCompile(`\(?-?\d[\d,]*(?:\.\d+)?\)?`)

// LayoutParser rebuilds visual rows from positioned text fragments and tags
// rows that look like table data.
type LayoutParser struct{}

func (LayoutParser) Method() domain.ExtractionMethod { return domain.MethodLayoutParser }

func (LayoutParser) Extract(ctx context.Context, data []byte) (string, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := pageRows(r, i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString(domain.PageMarker(i))
		sb.WriteString("\n")
		for _, row := range rows {
			if len(rowNumber.FindAllString(row, -1)) >= 2 {
				sb.WriteString(domain.TableRowTag)
				sb.WriteString(" ")
			}
			sb.WriteString(row)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return cleanLayout(sb.String()), nil
}

func pageRows(r *pdf.Reader, num int) (rows []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content stream panic: %v", rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return nil, nil
	}

	byBand := map[float64][]pdf.Text{}
	for _, t := range page.Content().Text {
		if strings.TrimSpace(t.S) == "" && t.W == 0 {
			continue
		}
		band := math.Round(t.Y/rowBand) * rowBand
		byBand[band] = append(byBand[band], t)
	}

	bands := make([]float64, 0, len(byBand))
	for b := range byBand {
		bands = append(bands, b)
	}
	// PDF space has its origin at the bottom-left.
	sort.Sort(sort.Reverse(sort.Float64Slice(bands)))

	for _, b := range bands {
		frags := byBand[b]
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })
		if line := joinFragments(frags); line != "" {
			rows = append(rows, line)
		}
	}
	return rows, nil
}

func joinFragments(frags []pdf.Text) string {
	var sb strings.Builder
	for i, f := range frags {
		if i > 0 {
			prev := frags[i-1]
			gap := f.X - (prev.X + prev.W)
			size := prev.FontSize
			if size <= 0 {
				size = 10
			}
			switch {
			case gap > columnGapRatio*size:
				sb.WriteString("  ")
			case gap > spaceGapRatio*size:
				sb.WriteString(" ")
			}
		}
		sb.WriteString(f.S)
	}
	return strings.TrimSpace(sb.String())
}
