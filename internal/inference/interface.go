// internal/inference/interface.go
package inference

import "errors"

var (
	// ErrModelLoad is returned when the classifier artifact cannot be loaded.
	ErrModelLoad = errors.New("failed to load model")
	// ErrNotInitialized is returned when a closed or missing engine is used.
	ErrNotInitialized = errors.New("inference engine not initialized")
	// ErrInputShape is returned when the tensor does not match the model input.
	ErrInputShape = errors.New("input tensor has wrong size")
)

// InferenceEngine is the contract of the pretrained classifier: one
// channel-major [1, 3, S, S] tensor in, one score per class out.
// This abstraction allows for easy mocking in tests and swapping implementations.
type InferenceEngine interface {
	// Classify runs the model on a single normalized tensor of length 3*S*S
	// and returns the raw logits, one per class.
	Classify(tensor []float32) ([]float32, error)

	// Close releases any resources held by the inference engine.
	Close() error
}
