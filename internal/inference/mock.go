// internal/inference/mock.go
package inference

import (
	"fmt"
	"sync"
)

// MockInference is a mock implementation of InferenceEngine for testing.
// It returns deterministic scores without requiring the ONNX shared library.
type MockInference struct {
	mu sync.Mutex

	// InputLen is the expected tensor length; zero disables the check
	InputLen int
	// Scores are the logits returned for every call
	Scores []float32
	// ShouldError if true, Classify will return an error
	ShouldError bool
	// ErrorMessage is the error message to return when ShouldError is true
	ErrorMessage string
	// CallCount tracks the number of times Classify was called
	CallCount int
	// LastInput is the tensor passed to the most recent call
	LastInput []float32
	// Closed reports whether Close was called
	Closed bool
}

// NewMock creates a MockInference returning scores [0.1, 0.2, 0.3]
func NewMock() *MockInference {
	return NewMockWithScores([]float32{0.1, 0.2, 0.3})
}

// NewMockWithScores creates a MockInference with custom scores
func NewMockWithScores(scores []float32) *MockInference {
	return &MockInference{Scores: scores}
}

// Classify validates the tensor length and returns a copy of Scores.
func (m *MockInference) Classify(tensor []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastInput = tensor

	if m.Closed {
		return nil, ErrNotInitialized
	}

	if m.ShouldError {
		if m.ErrorMessage != "" {
			return nil, fmt.Errorf("%s", m.ErrorMessage)
		}
		return nil, fmt.Errorf("mock inference error")
	}

	if m.InputLen > 0 && len(tensor) != m.InputLen {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrInputShape, len(tensor), m.InputLen)
	}

	out := make([]float32, len(m.Scores))
	copy(out, m.Scores)
	return out, nil
}

// Calls returns CallCount under the lock
func (m *MockInference) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Close marks the mock closed; later calls fail with ErrNotInitialized
func (m *MockInference) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// SetError configures the mock to return an error on the next Classify call
func (m *MockInference) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShouldError = true
	m.ErrorMessage = msg
}

// ClearError clears any configured error
func (m *MockInference) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ShouldError = false
	m.ErrorMessage = ""
}

// Ensure MockInference implements InferenceEngine at compile time
var _ InferenceEngine = (*MockInference)(nil)
