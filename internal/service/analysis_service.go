package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"finlens/internal/analysis"
	"finlens/internal/domain"
	"finlens/internal/export"
	"finlens/internal/port"
	"finlens/internal/session"
	"finlens/internal/tables"
)

// MinTextLength is the shortest extracted text, in characters, that is analyzed.
const MinTextLength = 100

// TextExtractor turns an uploaded file into text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename, ext string) (*domain.ExtractionResult, error)
	OCRAvailable() bool
}

// FinancialAnalyzer produces a financial statement extraction.
type FinancialAnalyzer interface {
	Run(ctx context.Context, text string, tables *domain.TableClassification) (*domain.FinancialAnalysis, analysis.Outcome)
}

// EarningsAnalyzer produces an earnings call analysis.
type EarningsAnalyzer interface {
	Run(ctx context.Context, text string, tables *domain.TableClassification) (*domain.EarningsAnalysis, analysis.Outcome)
}

// AnalyzeInput is the DTO for one uploaded document.
type AnalyzeInput struct {
	SessionID string
	Filename  string
	Content   []byte
	Type      domain.AnalysisType
}

// AnalyzeResult is the outcome of Analyze. When NeedsReview is set, no
// analysis was run and Message explains why.
type AnalyzeResult struct {
	Type         domain.AnalysisType
	Filename     string
	NeedsReview  bool
	Message      string
	Method       domain.ExtractionMethod
	ArtifactName string
	Financial    *domain.FinancialAnalysis
	Earnings     *domain.EarningsAnalysis
	Outcome      analysis.Outcome
	TableCount   int
}

// Analysis returns whichever analysis was produced.
func (r *AnalyzeResult) Analysis() interface{} {
	if r.Financial != nil {
		return r.Financial
	}
	if r.Earnings != nil {
		return r.Earnings
	}
	return nil
}

// Readiness describes the optional capabilities of the pipeline.
type Readiness struct {
	OCRAvailable bool     `json:"ocr_available"`
	Providers    []string `json:"providers"`
}

// Download is a rendered file ready to be sent to the client.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AnalysisService defines the document analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error)
	Workbook(ctx context.Context, sessionID string) (*Download, error)
	CSV(ctx context.Context, sessionID string) (*Download, error)
	Artifact(ctx context.Context, sessionID string) (*Download, error)
	Readiness() Readiness
}

type analysisService struct {
	extractor TextExtractor
	financial FinancialAnalyzer
	earnings  EarningsAnalyzer
	sessions  *session.Store
	sink      port.ArtifactSink
	providers []string
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnalysisService creates a new AnalysisService implementation. sink may be
// nil, in which case artifact downloads always report not found.
func NewAnalysisService(
	extractor TextExtractor,
	financial FinancialAnalyzer,
	earnings EarningsAnalyzer,
	sessions *session.Store,
	sink port.ArtifactSink,
	providers []string,
	logger *zap.Logger,
) AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &analysisService{
		extractor: extractor,
		financial: financial,
		earnings:  earnings,
		sessions:  sessions,
		sink:      sink,
		providers: providers,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Filename)), ".")
	extraction, err := s.extractor.Extract(ctx, input.Content, input.Filename, ext)
	if err != nil {
		return nil, err
	}

	if extraction.ArtifactName != "" {
		s.sessions.SetArtifact(input.SessionID, extraction.ArtifactName)
	}

	result := &AnalyzeResult{
		Type:         input.Type,
		Filename:     input.Filename,
		Method:       extraction.Method,
		ArtifactName: extraction.ArtifactName,
	}

	if !extraction.Success {
		s.logger.Warn("service.Analyze: extraction needs review",
			zap.String("file", input.Filename),
			zap.String("artifact", extraction.ArtifactName),
		)
		result.NeedsReview = true
		result.Message = "PDF extraction needs review"
		return result, nil
	}

	if utf8.RuneCountInString(strings.TrimSpace(extraction.Text)) < MinTextLength {
		return nil, fmt.Errorf("%d characters extracted: %w", utf8.RuneCountInString(extraction.Text), domain.ErrTextTooShort)
	}

	tc := tables.Extract(extraction.Text)
	result.TableCount = len(tc.All)

	switch input.Type {
	case domain.AnalysisFinancial:
		result.Financial, result.Outcome = s.financial.Run(ctx, extraction.Text, tc)
		s.sessions.SetFinancial(input.SessionID, result.Financial, input.Filename)
	default:
		result.Type = domain.AnalysisEarnings
		result.Earnings, result.Outcome = s.earnings.Run(ctx, extraction.Text, tc)
	}

	s.logger.Info("service.Analyze: document analyzed",
		zap.String("file", input.Filename),
		zap.String("type", string(result.Type)),
		zap.String("method", string(result.Method)),
		zap.String("source", string(result.Outcome.Source)),
		zap.String("provider", result.Outcome.Provider),
		zap.Int("tables", result.TableCount),
	)
	return result, nil
}

func (s *analysisService) lastFinancial(sessionID string) (session.Entry, error) {
	entry, ok := s.sessions.Get(sessionID)
	if !ok || entry.Financial == nil {
		return session.Entry{}, domain.ErrNoAnalysis
	}
	return entry, nil
}

func (s *analysisService) Workbook(_ context.Context, sessionID string) (*Download, error) {
	entry, err := s.lastFinancial(sessionID)
	if err != nil {
		return nil, err
	}
	buf, err := export.BuildWorkbook(entry.Financial, s.now())
	if err != nil {
		return nil, fmt.Errorf("building workbook: %w", err)
	}
	return &Download{
		Filename:    export.WorkbookFilename,
		ContentType: export.WorkbookContentType,
		Content:     buf.Bytes(),
	}, nil
}

func (s *analysisService) CSV(_ context.Context, sessionID string) (*Download, error) {
	entry, err := s.lastFinancial(sessionID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.NewCSVWriter(&buf).WriteAnalysis(entry.Financial); err != nil {
		return nil, fmt.Errorf("writing csv: %w", err)
	}
	base := strings.TrimSuffix(entry.Filename, filepath.Ext(entry.Filename))
	return &Download{
		Filename:    export.BuildFilename(base, "csv", s.now()),
		ContentType: export.CSVContentType,
		Content:     buf.Bytes(),
	}, nil
}

func (s *analysisService) Artifact(ctx context.Context, sessionID string) (*Download, error) {
	entry, ok := s.sessions.Get(sessionID)
	if !ok || entry.ArtifactName == "" || s.sink == nil {
		return nil, domain.ErrArtifactNotFound
	}
	data, err := s.sink.Download(ctx, entry.ArtifactName)
	if err != nil {
		return nil, err
	}
	return &Download{
		Filename:    entry.ArtifactName,
		ContentType: "text/plain; charset=utf-8",
		Content:     data,
	}, nil
}

func (s *analysisService) Readiness() Readiness {
	providers := s.providers
	if providers == nil {
		providers = []string{}
	}
	return Readiness{
		OCRAvailable: s.extractor.OCRAvailable(),
		Providers:    providers,
	}
}
