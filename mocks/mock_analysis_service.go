package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finlens/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeResult), args.Error(1)
}

func (m *MockAnalysisService) Workbook(ctx context.Context, sessionID string) (*service.Download, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockAnalysisService) CSV(ctx context.Context, sessionID string) (*service.Download, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockAnalysisService) Artifact(ctx context.Context, sessionID string) (*service.Download, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockAnalysisService) Readiness() service.Readiness {
	args := m.Called()
	return args.Get(0).(service.Readiness)
}
