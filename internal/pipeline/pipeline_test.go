// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/labels"
	"github.com/SyedDaiam9101/cover-service/internal/prediction"
	"github.com/SyedDaiam9101/cover-service/internal/preprocess"
)

func testTable(n int) *labels.Table {
	records := make([]string, n)
	for i := range records {
		records[i] = fmt.Sprintf("NILF%06d\ttitle %d\tauthor %d", i, i, i)
	}
	return labels.New(records)
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// blockingEngine holds each call until release is closed.
type blockingEngine struct {
	*inference.MockInference
	started chan struct{}
	release chan struct{}
}

func (b *blockingEngine) Classify(tensor []float32) ([]float32, error) {
	b.started <- struct{}{}
	<-b.release
	return b.MockInference.Classify(tensor)
}

func TestRun_EndToEnd(t *testing.T) {
	mock := inference.NewMockWithScores([]float32{1.0, 3.0, 2.0})
	mock.InputLen = preprocess.TensorLen(preprocess.ImageSize)
	p := New(mock, testTable(3))

	pred, err := p.Run(context.Background(), testImage(400, 200))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if pred.Index != 1 || pred.Identifier != "NILF000001" {
		t.Errorf("Unexpected prediction: %+v", pred)
	}
	if pred.Confidence != "66.5%" {
		t.Errorf("Expected confidence 66.5%%, got %s", pred.Confidence)
	}
	if pred.Link != "http://nilf.it/000001" {
		t.Errorf("Unexpected link %q", pred.Link)
	}

	if mock.Calls() != 1 {
		t.Errorf("Expected one inference call, got %d", mock.Calls())
	}
	if len(mock.LastInput) != 3*224*224 {
		t.Errorf("Expected tensor of length %d, got %d", 3*224*224, len(mock.LastInput))
	}
}

func TestRun_TensorIsDeterministic(t *testing.T) {
	mock := inference.NewMockWithScores([]float32{0, 1, 0})
	p := New(mock, testTable(3))
	img := testImage(333, 517)

	if _, err := p.Run(context.Background(), img); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	first := mock.LastInput

	if _, err := p.Run(context.Background(), img); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second := mock.LastInput

	for i := range first {
		if math.Float32bits(first[i]) != math.Float32bits(second[i]) {
			t.Fatalf("Tensor differs at %d", i)
		}
	}
}

func TestRun_CustomSizeAndLinkBase(t *testing.T) {
	mock := inference.NewMockWithScores([]float32{0, 1})
	mock.InputLen = preprocess.TensorLen(32)
	p := New(mock, testTable(2), WithImageSize(32), WithLinkBase("https://example.org/"))

	pred, err := p.Run(context.Background(), testImage(10, 20))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if pred.Link != "https://example.org/000001" {
		t.Errorf("Unexpected link %q", pred.Link)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		engine inference.InferenceEngine
		table  *labels.Table
		img    image.Image
		want   error
	}{
		{
			name:   "degenerate image",
			engine: inference.NewMockWithScores([]float32{1, 2, 3}),
			table:  testTable(3),
			img:    image.NewRGBA(image.Rect(0, 0, 0, 5)),
			want:   preprocess.ErrDegenerateImage,
		},
		{
			name:   "nil engine",
			engine: nil,
			table:  testTable(3),
			img:    testImage(10, 10),
			want:   inference.ErrNotInitialized,
		},
		{
			name:   "score length mismatch",
			engine: inference.NewMockWithScores([]float32{1, 2}),
			table:  testTable(3),
			img:    testImage(10, 10),
			want:   prediction.ErrScoreLength,
		},
		{
			name:   "malformed label",
			engine: inference.NewMockWithScores([]float32{1}),
			table:  labels.New([]string{"NILF000000 no tabs"}),
			img:    testImage(10, 10),
			want:   prediction.ErrMalformedLabel,
		},
		{
			name:   "non-finite score",
			engine: inference.NewMockWithScores([]float32{1, float32(math.Inf(1)), 2}),
			table:  testTable(3),
			img:    testImage(10, 10),
			want:   prediction.ErrNonFiniteScore,
		},
		{
			name:   "short identifier",
			engine: inference.NewMockWithScores([]float32{1}),
			table:  labels.New([]string{"N1\ttitle\tauthor"}),
			img:    testImage(10, 10),
			want:   prediction.ErrShortIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.engine, tt.table)
			pred, err := p.Run(context.Background(), tt.img)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if pred != nil {
				t.Errorf("Expected no prediction on error, got %+v", pred)
			}
		})
	}
}

func TestRun_EngineErrorIsReported(t *testing.T) {
	mock := inference.NewMockWithScores([]float32{1, 2, 3})
	mock.SetError("model execution failed")
	p := New(mock, testTable(3))

	_, err := p.Run(context.Background(), testImage(10, 10))
	if err == nil {
		t.Fatal("Expected error from inference, got nil")
	}
}

func TestSubmit_DeliversResult(t *testing.T) {
	p := New(inference.NewMockWithScores([]float32{1, 3, 2}), testTable(3))

	task := p.Submit(context.Background(), testImage(40, 20))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pred, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if pred.Index != 1 {
		t.Errorf("Expected index 1, got %d", pred.Index)
	}
	if task.Stale() {
		t.Error("Expected the only task not to be stale")
	}
}

func TestSubmit_CancelledWaitDoesNotAbortRun(t *testing.T) {
	engine := &blockingEngine{
		MockInference: inference.NewMockWithScores([]float32{1, 3, 2}),
		started:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}
	p := New(engine, testTable(3))

	ctx, cancel := context.WithCancel(context.Background())
	task := p.Submit(ctx, testImage(40, 20))
	<-engine.started

	cancel()
	if _, err := task.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	close(engine.release)
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not complete after caller gave up")
	}

	pred, err := task.Wait(context.Background())
	if err != nil {
		t.Fatalf("Expected completed run, got %v", err)
	}
	if pred.Index != 1 {
		t.Errorf("Expected index 1, got %d", pred.Index)
	}
}

func TestSubmit_NewerTaskMakesOlderStale(t *testing.T) {
	engine := &blockingEngine{
		MockInference: inference.NewMockWithScores([]float32{1, 3, 2}),
		started:       make(chan struct{}, 2),
		release:       make(chan struct{}),
	}
	p := New(engine, testTable(3))

	first := p.Submit(context.Background(), testImage(40, 20))
	second := p.Submit(context.Background(), testImage(20, 40))

	if !first.Stale() {
		t.Error("Expected first task to be stale")
	}
	if second.Stale() {
		t.Error("Expected latest task not to be stale")
	}

	close(engine.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := first.Wait(ctx); err != nil {
		t.Errorf("Stale task still completes, got %v", err)
	}
	if _, err := second.Wait(ctx); err != nil {
		t.Errorf("Latest task failed: %v", err)
	}
	if engine.Calls() != 2 {
		t.Errorf("Expected 2 inference calls, got %d", engine.Calls())
	}
}
