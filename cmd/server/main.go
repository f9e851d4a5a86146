package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finlens/internal/analysis"
	"finlens/internal/config"
	"finlens/internal/extract"
	"finlens/internal/handler"
	"finlens/internal/llm"
	"finlens/internal/llm/claude"
	"finlens/internal/llm/gemini"
	"finlens/internal/llm/openai"
	"finlens/internal/logger"
	"finlens/internal/port"
	"finlens/internal/router"
	"finlens/internal/service"
	"finlens/internal/session"
	"finlens/internal/storage/local"
	s3storage "finlens/internal/storage/s3"
)

// @title finlens API
// @version 1.0
// @description Financial document analysis: text extraction, statement tables, model-backed structured analysis and spreadsheet export.
// @BasePath /
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register completion providers
	llm.RegisterProvider("groq", func(pc *config.ProviderConfig) (port.CompletionClient, error) {
		return openai.NewGroqClient(pc), nil
	})
	llm.RegisterProvider("openai", func(pc *config.ProviderConfig) (port.CompletionClient, error) {
		return openai.NewClient(pc), nil
	})
	llm.RegisterProvider("claude", func(pc *config.ProviderConfig) (port.CompletionClient, error) {
		return claude.NewClient(pc), nil
	})
	llm.RegisterProvider("gemini", func(pc *config.ProviderConfig) (port.CompletionClient, error) {
		c, err := gemini.NewClient(pc)
		if err != nil {
			return nil, err
		}
		return c, nil
	})

	chain, providers, err := llm.NewChain(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize completion providers: %w", err)
	}
	chain.WithLogger(zl)
	if len(providers) == 0 {
		zl.Warn("no completion provider has an API key; analyses will use local fallbacks")
	}

	// Initialize artifact storage
	sink, err := newSink(&cfg.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact sink: %w", err)
	}

	// Initialize extraction
	var ocr *extract.OCR
	if cfg.Extract.OCREnabled {
		ocr = extract.NewOCR(cfg.Extract.OCRDPI, cfg.Extract.OCRConcurrency, zl)
		if err := ocr.Available(); err != nil {
			zl.Warn("ocr strategy unavailable", zap.Error(err))
		}
	}
	engine := extract.NewEngine(extract.DefaultStrategies(ocr), sink, zl)

	// Initialize analysis
	a := cfg.Analysis
	financial := analysis.NewOrchestrator(analysis.FinancialConfig(analysis.FinancialOptions{
		MaxChars:     a.FinancialMaxChars,
		MinLineItems: a.MinLineItems,
		Thresholds: analysis.Thresholds{
			Income:   a.IncomeThreshold,
			Balance:  a.BalanceThreshold,
			CashFlow: a.CashFlowThreshold,
		},
	}), chain, a.CompletionTimeout, zl)
	earnings := analysis.NewOrchestrator(analysis.EarningsConfig(a.EarningsMaxChars), chain, a.CompletionTimeout, zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(cfg.Session.TTL, zl)
	go sessions.Run(ctx, time.Minute)

	svc := service.NewAnalysisService(engine, financial, earnings, sessions, sink, providers, zl)

	// Initialize handlers
	analysisH := handler.NewAnalysisHandler(svc, cfg.Server.MaxUploadBytes(), zl)
	exportH := handler.NewExportHandler(svc, zl)
	healthH := handler.NewHealthHandler(svc)

	// Setup router
	r := router.Setup(router.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SessionMaxAge:  int(cfg.Session.TTL.Seconds()),
		SecureCookies:  cfg.Server.Environment == "production",
		Logger:         zl,
	}, analysisH, exportH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.Strings("providers", providers),
			zap.Bool("ocr", engine.OCRAvailable()),
			zap.String("artifacts", cfg.Artifacts.Sink),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		zl.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newSink(cfg *config.ArtifactsConfig) (port.ArtifactSink, error) {
	switch cfg.Sink {
	case "s3":
		s, err := s3storage.NewSink(&cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "local", "":
		s, err := local.NewSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown artifact sink %q", cfg.Sink)
	}
}
