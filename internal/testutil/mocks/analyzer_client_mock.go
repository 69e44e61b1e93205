package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/runview/internal/models"
)

// MockAnalyzerClient is a mock implementation of analyzer.ClientInterface
type MockAnalyzerClient struct {
	mock.Mock
}

func (m *MockAnalyzerClient) Analyze(ctx context.Context, filename string, r io.Reader) (*models.Payload, []byte, error) {
	args := m.Called(ctx, filename, r)
	var payload *models.Payload
	if p := args.Get(0); p != nil {
		payload = p.(*models.Payload)
	}
	var raw []byte
	if b := args.Get(1); b != nil {
		raw = b.([]byte)
	}
	return payload, raw, args.Error(2)
}
