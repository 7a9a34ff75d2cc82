// internal/pipeline/task.go
package pipeline

import (
	"context"
	"image"

	"github.com/SyedDaiam9101/cover-service/internal/prediction"
)

// Task is a pipeline run executing in the background. Its result is written
// once; giving up on it never interrupts the run.
type Task struct {
	owner      *Pipeline
	generation uint64
	done       chan struct{}

	result *prediction.Prediction
	err    error
}

// Submit starts Run on a new goroutine and returns immediately. Every
// submission supersedes the previous one, see Task.Stale.
func (p *Pipeline) Submit(ctx context.Context, img image.Image) *Task {
	t := &Task{
		owner:      p,
		generation: p.generation.Add(1),
		done:       make(chan struct{}),
	}

	// Detached so a cancelled caller cannot abort a run midway.
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		t.result, t.err = p.Run(runCtx, img)
	}()

	return t
}

// Done is closed when the run has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run finishes or ctx is done. On ctx expiry it returns
// ctx.Err(); the run continues and its result is dropped.
func (t *Task) Wait(ctx context.Context) (*prediction.Prediction, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stale reports whether a newer task was submitted to the same pipeline.
// Callers should ignore the result of a stale task.
func (t *Task) Stale() bool {
	return t.owner.generation.Load() != t.generation
}
