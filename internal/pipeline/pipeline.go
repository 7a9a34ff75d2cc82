// Package pipeline runs one photograph through normalize, encode, infer and
// interpret as a single unit of work.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/labels"
	"github.com/SyedDaiam9101/cover-service/internal/metrics"
	"github.com/SyedDaiam9101/cover-service/internal/prediction"
	"github.com/SyedDaiam9101/cover-service/internal/preprocess"
)

const tracerName = "github.com/SyedDaiam9101/cover-service/internal/pipeline"

// Stage names used for spans, metrics and logs.
const (
	StageNormalize = "normalize"
	StageEncode    = "encode"
	StageInfer     = "infer"
	StageInterpret = "interpret"
	StageLink      = "link"
)

// Pipeline holds the loaded model and label table. Both are read-only after
// construction; runs are serialized.
type Pipeline struct {
	mu     sync.Mutex
	engine inference.InferenceEngine
	labels *labels.Table

	size     int
	linkBase string
	logger   *zap.Logger
	tracer   trace.Tracer

	generation atomic.Uint64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithImageSize overrides the square input side (default 224).
func WithImageSize(size int) Option {
	return func(p *Pipeline) { p.size = size }
}

// WithLinkBase overrides the catalogue URL prefix.
func WithLinkBase(base string) Option {
	return func(p *Pipeline) { p.linkBase = base }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tracer }
}

// New creates a Pipeline around an already loaded engine and label table.
func New(engine inference.InferenceEngine, table *labels.Table, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:   engine,
		labels:   table,
		size:     preprocess.ImageSize,
		linkBase: prediction.DefaultLinkBase,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// Labels returns the label table the pipeline decodes with.
func (p *Pipeline) Labels() *labels.Table {
	return p.labels
}

// Run classifies img. ctx only carries tracing: once started a run always
// completes.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*prediction.Prediction, error) {
	if p.engine == nil {
		return nil, inference.ErrNotInitialized
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := p.tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	start := time.Now()

	var normalized *image.RGBA
	err := p.stage(ctx, StageNormalize, func() (err error) {
		normalized, err = preprocess.Normalize(img, p.size)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	var tensor []float32
	err = p.stage(ctx, StageEncode, func() (err error) {
		tensor, err = preprocess.Encode(normalized)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	var scores []float32
	err = p.stage(ctx, StageInfer, func() (err error) {
		scores, err = p.engine.Classify(tensor)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	var pred *prediction.Prediction
	err = p.stage(ctx, StageInterpret, func() (err error) {
		pred, err = prediction.Interpret(scores, p.labels)
		return err
	})
	if err != nil {
		return nil, p.fail(span, err)
	}

	link, err := prediction.Link(p.linkBase, pred.Identifier)
	if err != nil {
		metrics.RecordStageError(StageLink)
		return nil, p.fail(span, err)
	}
	pred.Link = link

	metrics.RecordConfidence(pred.Probability)
	span.SetAttributes(
		attribute.String("cover.identifier", pred.Identifier),
		attribute.Float64("cover.probability", pred.Probability),
	)
	p.logger.Debug("classified image",
		zap.String("identifier", pred.Identifier),
		zap.String("confidence", pred.Confidence),
		zap.Duration("elapsed", time.Since(start)))

	return pred, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	_, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn()
	metrics.RecordStage(name, time.Since(start).Seconds())

	if err != nil {
		metrics.RecordStageError(name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Warn("classification failed", zap.Error(err))
	return err
}
