package testutil

import (
	"context"
	"sync"

	"companion/provider"
)

// MockGenerator implements chat.Generator for testing
type MockGenerator struct {
	// Configurable responses
	GenerateFunc     func(ctx context.Context, message string) (string, error)
	GenerateJSONFunc func(ctx context.Context, message string) (any, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockGenerator creates a mock that always answers with reply
func NewMockGenerator(reply string) *MockGenerator {
	mock := &MockGenerator{}
	mock.GenerateFunc = func(ctx context.Context, message string) (string, error) {
		return reply, nil
	}
	mock.GenerateJSONFunc = func(ctx context.Context, message string) (any, error) {
		return map[string]any{"reply": reply, "expression": "neutral"}, nil
	}
	return mock
}

func (m *MockGenerator) record(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, message)
}

func (m *MockGenerator) Generate(ctx context.Context, message string, opts ...provider.GenerateOption) (string, error) {
	m.record(message)
	return m.GenerateFunc(ctx, message)
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, message string, opts ...provider.GenerateOption) (any, error) {
	m.record(message)
	return m.GenerateJSONFunc(ctx, message)
}

// Prompts returns every message sent so far
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent message, or "" if none was sent
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Calls returns how many requests were made
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
