package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finlens/internal/analysis"
	"finlens/internal/domain"
	"finlens/internal/extract"
	"finlens/internal/port"
	"finlens/internal/service"
	"finlens/internal/session"
	"finlens/mocks"
)

const resultsText = `ACME Ltd results for the year
All amounts are stated in Rs. crore unless otherwise mentioned in the notes below.
Particulars 2024 2023
Revenue from operations 1,200 1,050
Other income 40 35
Profit before tax 300 260

Management commentary follows here.`

type failingStrategy struct{}

func (failingStrategy) Method() domain.ExtractionMethod { return domain.MethodPrimaryParser }

func (failingStrategy) Extract(context.Context, []byte) (string, error) {
	return "", errors.New("no text layer")
}

type fixture struct {
	svc      service.AnalysisService
	client   *mocks.MockCompletionClient
	sink     *mocks.MockArtifactSink
	sessions *session.Store
}

func newFixture(t *testing.T, strategies ...extract.Strategy) *fixture {
	t.Helper()
	client := new(mocks.MockCompletionClient)
	sink := new(mocks.MockArtifactSink)
	logger := zap.NewNop()

	engine := extract.NewEngine(strategies, sink, logger)
	financial := analysis.NewOrchestrator(analysis.FinancialConfig(analysis.DefaultFinancialOptions()), client, time.Second, logger)
	earnings := analysis.NewOrchestrator(analysis.EarningsConfig(15000), client, time.Second, logger)
	sessions := session.NewStore(time.Hour, logger)

	svc := service.NewAnalysisService(engine, financial, earnings, sessions, sink, []string{"groq", "gemini"}, logger)
	return &fixture{svc: svc, client: client, sink: sink, sessions: sessions}
}

func (f *fixture) failCompletions() {
	f.client.On("Complete", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
}

func TestAnalyze_FinancialTXTWithFailingModel(t *testing.T) {
	f := newFixture(t)
	f.failCompletions()

	res, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		SessionID: "s1",
		Filename:  "results.txt",
		Content:   []byte(resultsText),
		Type:      domain.AnalysisFinancial,
	})

	require.NoError(t, err)
	assert.False(t, res.NeedsReview)
	assert.Equal(t, domain.MethodPlainText, res.Method)
	assert.Equal(t, domain.SourceFallback, res.Outcome.Source)
	assert.Equal(t, 1, res.TableCount)
	require.NotNil(t, res.Financial)
	assert.Nil(t, res.Earnings)
	assert.Equal(t, "INR", res.Financial.Currency)
	require.Len(t, res.Financial.IncomeStatement, 3)
	assert.Equal(t, "Revenue from operations", res.Financial.IncomeStatement[0].LineItem)
	assert.Equal(t, domain.ConfidenceMedium, res.Financial.IncomeStatement[0].Confidence)

	entry, ok := f.sessions.Get("s1")
	require.True(t, ok)
	assert.Same(t, res.Financial, entry.Financial)
}

func TestAnalyze_EarningsDefault(t *testing.T) {
	f := newFixture(t)
	f.failCompletions()

	res, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		SessionID: "s1",
		Filename:  "call.TXT",
		Content:   []byte(resultsText + "\nWe delivered strong growth and record margins this year."),
		Type:      domain.ParseAnalysisType(""),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisEarnings, res.Type)
	require.NotNil(t, res.Earnings)
	assert.Equal(t, domain.ToneOptimistic, res.Earnings.ManagementTone)

	_, ok := f.sessions.Get("s1")
	assert.False(t, ok)
}

func TestAnalyze_ShortText(t *testing.T) {
	for _, typ := range []domain.AnalysisType{domain.AnalysisFinancial, domain.AnalysisEarnings} {
		t.Run(string(typ), func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
				SessionID: "s1",
				Filename:  "short.txt",
				Content:   []byte("Revenue 10 20"),
				Type:      typ,
			})

			assert.ErrorIs(t, err, domain.ErrTextTooShort)
			f.client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyze_UnsupportedExtension(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{Filename: "deck.pptx", Content: []byte("x")})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestAnalyze_PDFNeedsReview(t *testing.T) {
	f := newFixture(t, failingStrategy{})
	f.sink.On("Save", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "scan_failed_")
	}), mock.Anything).Return(nil)

	res, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		SessionID: "s1",
		Filename:  "scan.pdf",
		Content:   []byte("%PDF-1.4"),
		Type:      domain.AnalysisFinancial,
	})

	require.NoError(t, err)
	assert.True(t, res.NeedsReview)
	assert.Equal(t, "PDF extraction needs review", res.Message)
	assert.NotEmpty(t, res.ArtifactName)
	assert.Nil(t, res.Analysis())
	f.client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)

	entry, ok := f.sessions.Get("s1")
	require.True(t, ok)
	assert.Equal(t, res.ArtifactName, entry.ArtifactName)
	assert.Nil(t, entry.Financial)
}

func TestWorkbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Workbook(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNoAnalysis)

	f.sessions.SetFinancial("s1", analysis.FinancialFallback(resultsText, nil), "results.txt")
	dl, err := f.svc.Workbook(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, "financial-analysis.xlsx", dl.Filename)
	assert.True(t, bytes.HasPrefix(dl.Content, []byte("PK")))
}

func TestCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CSV(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNoAnalysis)

	f.sessions.SetFinancial("s1", &domain.FinancialAnalysis{
		Years:           domain.Cells{"2024"},
		IncomeStatement: []domain.LineItemEntry{{LineItem: "Revenue", Values: domain.Cells{"1,200"}, Unit: "crores", Confidence: domain.ConfidenceHigh}},
	}, "Q4 results.txt")
	dl, err := f.svc.CSV(ctx, "s1")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dl.Filename, "Q4_results_"))
	assert.True(t, strings.HasSuffix(dl.Filename, ".csv"))
	assert.Contains(t, string(dl.Content), "Income Statement,Revenue,\"1,200\",crores,high")
}

func TestArtifact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Artifact(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	f.sessions.SetArtifact("s1", "scan_failed_1.txt")
	f.sink.On("Download", mock.Anything, "scan_failed_1.txt").Return([]byte("=== EXTRACTION REPORT ==="), nil)

	dl, err := f.svc.Artifact(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, "scan_failed_1.txt", dl.Filename)
	assert.Equal(t, "=== EXTRACTION REPORT ===", string(dl.Content))
}

func TestReadiness(t *testing.T) {
	f := newFixture(t)

	r := f.svc.Readiness()

	assert.False(t, r.OCRAvailable)
	assert.Equal(t, []string{"groq", "gemini"}, r.Providers)
}

var _ port.ArtifactSink = (*mocks.MockArtifactSink)(nil)
