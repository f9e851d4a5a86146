package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockArtifactSink is a mock implementation of port.ArtifactSink.
type MockArtifactSink struct {
	mock.Mock
}

func (m *MockArtifactSink) Save(ctx context.Context, name string, content []byte) error {
	args := m.Called(ctx, name, content)
	return args.Error(0)
}

func (m *MockArtifactSink) Download(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
