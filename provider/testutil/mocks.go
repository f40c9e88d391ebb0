package testutil

import (
	"context"
	"sync/atomic"

	"abapai/model"
)

// MockGateway implements model.Gateway and model.ModelLister for testing.
// Call counters let tests assert that preconditions short-circuit before any
// gateway work happens.
type MockGateway struct {
	// Configurable responses
	CompleteFunc   func(ctx context.Context, prompt string) (string, error)
	ListModelsFunc func(ctx context.Context) ([]string, error)

	provider      model.Provider
	completeCalls atomic.Int32
	listCalls     atomic.Int32
	lastPrompt    atomic.Value
}

// NewMockGateway creates a mock gateway with default implementations
func NewMockGateway(p model.Provider) *MockGateway {
	mock := &MockGateway{provider: p}
	mock.CompleteFunc = mock.defaultComplete
	mock.ListModelsFunc = mock.defaultListModels
	return mock
}

func (m *MockGateway) defaultComplete(ctx context.Context, prompt string) (string, error) {
	return "Mock analysis", nil
}

func (m *MockGateway) defaultListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model-1", "mock-model-2"}, nil
}

func (m *MockGateway) Provider() model.Provider {
	return m.provider
}

func (m *MockGateway) Complete(ctx context.Context, prompt string) (string, error) {
	m.completeCalls.Add(1)
	m.lastPrompt.Store(prompt)
	return m.CompleteFunc(ctx, prompt)
}

func (m *MockGateway) ListModels(ctx context.Context) ([]string, error) {
	m.listCalls.Add(1)
	return m.ListModelsFunc(ctx)
}

// CompleteCalls returns how many times Complete was invoked.
func (m *MockGateway) CompleteCalls() int {
	return int(m.completeCalls.Load())
}

// ListCalls returns how many times ListModels was invoked.
func (m *MockGateway) ListCalls() int {
	return int(m.listCalls.Load())
}

// LastPrompt returns the prompt of the most recent Complete call.
func (m *MockGateway) LastPrompt() string {
	if v, ok := m.lastPrompt.Load().(string); ok {
		return v
	}
	return ""
}

// CompleteOnlyGateway implements model.Gateway without model.ModelLister.
type CompleteOnlyGateway struct {
	P    model.Provider
	Text string
}

func (g *CompleteOnlyGateway) Provider() model.Provider {
	return g.P
}

func (g *CompleteOnlyGateway) Complete(ctx context.Context, prompt string) (string, error) {
	return g.Text, nil
}
