package analyzer

import (
	"context"
	"io"

	"github.com/vytor/runview/internal/models"
)

// ClientInterface defines the upstream analyzer operations.
// This interface enables testability by allowing mock implementations.
type ClientInterface interface {
	Analyze(ctx context.Context, filename string, r io.Reader) (*models.Payload, []byte, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
