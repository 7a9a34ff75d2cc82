// internal/inference/inference.go
package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Options describes the model artifact and its tensor contract.
type Options struct {
	// ModelPath is the path of the ONNX classifier on disk.
	ModelPath string
	// SharedLibraryPath optionally points at the onnxruntime shared library.
	SharedLibraryPath string
	// InputName and OutputName are discovered from the model when empty.
	InputName  string
	OutputName string
	// ImageSize is the side of the square input image.
	ImageSize int
	// NumClasses is the length of the score vector.
	NumClasses int
}

// Inference wraps an ONNX runtime session with preallocated input and output
// tensors. Runs are serialized; the model holds no state between calls.
// It implements the InferenceEngine interface.
type Inference struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputLen     int
}

// New loads the classifier described by opts. Any failure is an ErrModelLoad.
func New(opts Options) (*Inference, error) {
	if opts.ImageSize <= 0 || opts.NumClasses <= 0 {
		return nil, fmt.Errorf("%w: invalid tensor contract (size=%d, classes=%d)", ErrModelLoad, opts.ImageSize, opts.NumClasses)
	}

	if opts.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(opts.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: failed to initialize ONNX environment: %v", ErrModelLoad, err)
		}
	}

	inputName, outputName, err := ioNames(opts)
	if err != nil {
		return nil, err
	}

	size := int64(opts.ImageSize)
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %v", ErrModelLoad, err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.NumClasses)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("%w: failed to create output tensor: %v", ErrModelLoad, err)
	}

	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrModelLoad, err)
	}

	return &Inference{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputLen:     3 * opts.ImageSize * opts.ImageSize,
	}, nil
}

// ioNames returns the configured tensor names, filling blanks from the model.
func ioNames(opts Options) (string, string, error) {
	if opts.InputName != "" && opts.OutputName != "" {
		return opts.InputName, opts.OutputName, nil
	}

	inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: failed to read model io info: %v", ErrModelLoad, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return "", "", fmt.Errorf("%w: unexpected io (in:%d out:%d)", ErrModelLoad, len(inputs), len(outputs))
	}

	in, out := opts.InputName, opts.OutputName
	if in == "" {
		in = inputs[0].Name
	}
	if out == "" {
		out = outputs[0].Name
	}
	return in, out, nil
}

// Classify copies tensor into the input buffer, runs the session and returns
// a copy of the logits.
func (inf *Inference) Classify(tensor []float32) ([]float32, error) {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	if inf.session == nil {
		return nil, ErrNotInitialized
	}

	if len(tensor) != inf.inputLen {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrInputShape, len(tensor), inf.inputLen)
	}

	copy(inf.inputTensor.GetData(), tensor)

	if err := inf.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := inf.outputTensor.GetData()
	scores := make([]float32, len(out))
	copy(scores, out)
	return scores, nil
}

// Close releases the ONNX session resources
func (inf *Inference) Close() error {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	if inf.session == nil {
		return nil
	}

	err := inf.session.Destroy()
	inf.session = nil
	inf.inputTensor.Destroy()
	inf.outputTensor.Destroy()
	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return ort.DestroyEnvironment()
}

// Ensure Inference implements InferenceEngine at compile time
var _ InferenceEngine = (*Inference)(nil)
