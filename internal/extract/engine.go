// Package extract turns uploaded PDF and TXT documents into plain text.
//
// PDFs go through an ordered list of strategies. The first strategy whose
// output passes IsValidText wins; if none does, the result carries manual
// review instructions instead of an error. Every PDF result is written to an
// artifact sink for later download.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"finlens/internal/domain"
	"finlens/internal/port"
)

// FailureText is returned as the document text when every strategy fails.
const FailureText = `ERROR: Could not extract text from PDF.

The document may be scanned, image-based or protected. Please try:
1. Convert the PDF to text with a desktop tool and upload the TXT file.
2. Copy the statement text into a .txt file and upload that instead.
3. Make sure the PDF is not a scanned image, or install OCR support (pdftoppm and tesseract).`

// availabilityChecker is implemented by strategies that depend on external tools.
type availabilityChecker interface {
	Available() error
}

// Engine runs extraction strategies in order.
type Engine struct {
	strategies []Strategy
	sink       port.ArtifactSink
	logger     *zap.Logger
	now        func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine. sink may be nil, in which case no artifacts are written.
func NewEngine(strategies []Strategy, sink port.ArtifactSink, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		strategies: strategies,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultStrategies returns the standard PDF strategy order. ocr may be nil.
func DefaultStrategies(ocr *OCR) []Strategy {
	s := []Strategy{PrimaryParser{}, LayoutParser{}}
	if ocr != nil {
		s = append(s, ocr)
	}
	return append(s, RawScan{})
}

// OCRAvailable reports whether an OCR strategy is configured and its tools are installed.
func (e *Engine) OCRAvailable() bool {
	for _, s := range e.strategies {
		if s.Method() != domain.MethodOCR {
			continue
		}
		if c, ok := s.(availabilityChecker); ok {
			return c.Available() == nil
		}
		return true
	}
	return false
}

// Extract converts data to text based on ext ("pdf" or "txt", case-insensitive,
// leading dot optional). Only an unsupported extension produces an error.
func (e *Engine) Extract(ctx context.Context, data []byte, filename, ext string) (*domain.ExtractionResult, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt":
		return &domain.ExtractionResult{
			Success: true,
			Text:    DecodePlainText(data),
			Method:  domain.MethodPlainText,
		}, nil
	case "pdf":
		return e.extractPDF(ctx, data, filename), nil
	default:
		return nil, fmt.Errorf("extension %q: %w", ext, domain.ErrUnsupportedFileType)
	}
}

func (e *Engine) extractPDF(ctx context.Context, data []byte, filename string) *domain.ExtractionResult {
	result := &domain.ExtractionResult{}

	for _, s := range e.strategies {
		method := s.Method()

		if c, ok := s.(availabilityChecker); ok {
			if err := c.Available(); err != nil {
				e.logger.Info("extract.Engine: strategy unavailable", zap.String("method", string(method)), zap.Error(err))
				result.Attempts = append(result.Attempts, domain.ExtractionAttempt{Method: method, Reason: err.Error()})
				continue
			}
		}

		text, err := s.Extract(ctx, data)
		if err == nil && !IsValidText(text) {
			err = errors.New("output failed validity check")
		}
		if err != nil {
			e.logger.Info("extract.Engine: strategy failed",
				zap.String("file", filename),
				zap.String("method", string(method)),
				zap.Error(err),
			)
			result.Attempts = append(result.Attempts, domain.ExtractionAttempt{Method: method, Reason: err.Error()})
			if ctx.Err() != nil {
				break
			}
			continue
		}

		result.Attempts = append(result.Attempts, domain.ExtractionAttempt{Method: method, Succeeded: true})
		result.Success = true
		result.Text = text
		result.Method = method
		break
	}

	if !result.Success {
		result.Text = FailureText
		result.Method = domain.MethodFailed
		result.RequiresManualReview = true
	}

	e.logger.Info("extract.Engine: pdf extracted",
		zap.String("file", filename),
		zap.String("method", string(result.Method)),
		zap.Bool("success", result.Success),
		zap.Int("chars", len(result.Text)),
	)

	result.ArtifactName = e.saveArtifact(ctx, filename, result)
	return result
}

func (e *Engine) saveArtifact(ctx context.Context, filename string, result *domain.ExtractionResult) string {
	if e.sink == nil {
		return ""
	}
	now := e.now()
	name := ArtifactName(filename, result.Method, now)
	if err := e.sink.Save(ctx, name, RenderArtifact(filename, result, now)); err != nil {
		e.logger.Warn("extract.Engine: saving artifact failed", zap.String("artifact", name), zap.Error(err))
		return ""
	}
	return name
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ArtifactName returns "{basename}_{method}_{unixmillis}.txt" for a source file.
func ArtifactName(filename string, method domain.ExtractionMethod, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s_%s_%d.txt", base, method, at.UnixMilli())
}

// RenderArtifact formats an extraction result as a text report with a header block.
func RenderArtifact(filename string, result *domain.ExtractionResult, at time.Time) []byte {
	status := "SUCCESS"
	if !result.Success {
		status = "FAILED"
	}
	var sb strings.Builder
	sb.WriteString("=== EXTRACTION REPORT ===\n")
	fmt.Fprintf(&sb, "File: %s\n", filename)
	fmt.Fprintf(&sb, "Method: %s\n", result.Method)
	fmt.Fprintf(&sb, "Date: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Status: %s\n", status)
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")
	sb.WriteString(result.Text)
	sb.WriteString("\n")
	return []byte(sb.String())
}
