// internal/handler/handler.go
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/SyedDaiam9101/cover-service/internal/cache"
	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/metrics"
	"github.com/SyedDaiam9101/cover-service/internal/middleware"
	"github.com/SyedDaiam9101/cover-service/internal/pipeline"
	"github.com/SyedDaiam9101/cover-service/internal/prediction"
	"github.com/SyedDaiam9101/cover-service/internal/preprocess"
	pb "github.com/SyedDaiam9101/cover-service/proto/coverpb"
)

// PredictionCache stores predictions keyed by image content.
// Get returns nil, nil on a miss.
type PredictionCache interface {
	Get(ctx context.Context, key string) (*prediction.Prediction, error)
	Set(ctx context.Context, key string, pred *prediction.Prediction) error
}

// Result is a prediction plus whether it was served from the cache
type Result struct {
	*prediction.Prediction
	Cached bool `json:"cached"`
}

// Handler implements the CoverClassifierServer interface and the HTTP API.
// The cache is optional.
type Handler struct {
	pb.UnimplementedCoverClassifierServer
	pipeline *pipeline.Pipeline
	cache    PredictionCache
	logger   *zap.Logger
}

// New creates a new Handler. Pass a nil cache to disable caching.
func New(p *pipeline.Pipeline, c PredictionCache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pipeline: p,
		cache:    c,
		logger:   logger,
	}
}

// Ready reports whether the handler can serve classifications
func (h *Handler) Ready() bool {
	return h.pipeline != nil && h.pipeline.Labels().Len() > 0
}

// Predict classifies encoded image bytes, consulting the cache first.
// Errors are domain errors; callers map them to transport codes.
func (h *Handler) Predict(ctx context.Context, data []byte) (*Result, error) {
	if h.pipeline == nil {
		return nil, inference.ErrNotInitialized
	}

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	log := h.logger.With(zap.String("request_id", requestID))

	key := cache.Key(data)
	if pred := h.cached(ctx, log, key); pred != nil {
		return &Result{Prediction: pred, Cached: true}, nil
	}

	img, err := preprocess.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pred, err := h.pipeline.Submit(ctx, img).Wait(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("classified",
		zap.String("identifier", pred.Identifier),
		zap.String("confidence", pred.Confidence),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, pred); err != nil {
			log.Warn("cache store failed", zap.Error(err))
		}
	}

	return &Result{Prediction: pred}, nil
}

// Lookup returns a cached prediction by the hex MD5 digest of the image.
// It returns nil, nil when nothing is cached.
func (h *Handler) Lookup(ctx context.Context, digest string) (*prediction.Prediction, error) {
	if h.cache == nil {
		return nil, ErrCacheDisabled
	}
	return h.cache.Get(ctx, cache.KeyPrefix+digest)
}

func (h *Handler) cached(ctx context.Context, log *zap.Logger, key string) *prediction.Prediction {
	if h.cache == nil {
		return nil
	}

	pred, err := h.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		log.Warn("cache lookup failed", zap.Error(err))
		return nil
	case pred == nil:
		metrics.RecordCache("miss")
		return nil
	default:
		metrics.RecordCache("hit")
		return pred
	}
}

// Classify handles a gRPC classification request
func (h *Handler) Classify(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if req == nil || len(req.GetValue()) == 0 {
		return nil, invalidArgumentError("image bytes cannot be empty")
	}

	res, err := h.Predict(ctx, req.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}

	out, err := toStruct(res)
	if err != nil {
		return nil, internalError("encode response: %v", err)
	}
	return out, nil
}

func toStruct(res *Result) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		pb.FieldIdentifier:  res.Identifier,
		pb.FieldTitle:       res.Title,
		pb.FieldAuthor:      res.Author,
		pb.FieldConfidence:  res.Confidence,
		pb.FieldProbability: res.Probability,
		pb.FieldLink:        res.Link,
		pb.FieldIndex:       res.Index,
		pb.FieldCached:      res.Cached,
	})
}
