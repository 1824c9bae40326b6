package irrecoverable

import (
	"context"
	"testing"
)

// MockSignalerContext fails the test when an error is thrown.
type MockSignalerContext struct {
	context.Context
	t *testing.T
}

var _ SignalerContext = (*MockSignalerContext)(nil)

func (m *MockSignalerContext) sealed() {}

func (m *MockSignalerContext) Throw(err error) {
	m.t.Fatalf("unexpected irrecoverable error: %v", err)
}

func NewMockSignalerContext(t *testing.T, ctx context.Context) *MockSignalerContext {
	return &MockSignalerContext{Context: ctx, t: t}
}
