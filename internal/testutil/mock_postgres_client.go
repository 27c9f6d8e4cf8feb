package testutil

import (
	"context"
	"sync/atomic"

	"github.com/psaworks/psa/internal/logger"
	"github.com/psaworks/psa/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type mockTxKey struct{}

// MockPostgresClient is a mock implementation of postgres client for testing.
// A failing outermost WithTx restores every tracked store to its state at
// the start of the transaction.
type MockPostgresClient struct {
	logger  *logger.Logger
	stores  []Snapshotter
	txCount atomic.Int64
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger, stores ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
		stores: stores,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if c.InTx(ctx) {
		return fn(ctx)
	}

	c.txCount.Add(1)
	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(context.WithValue(ctx, mockTxKey{}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		c.logger.Debugw("mock transaction rolled back", "error", err)
		return err
	}
	return nil
}

// InTx reports whether ctx carries a mock transaction
func (c *MockPostgresClient) InTx(ctx context.Context) bool {
	v, ok := ctx.Value(mockTxKey{}).(bool)
	return ok && v
}

// TxCount returns the number of outermost transactions started
func (c *MockPostgresClient) TxCount() int {
	return int(c.txCount.Load())
}
