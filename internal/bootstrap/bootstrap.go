// Package bootstrap loads the label table and model named by the
// configuration and assembles a ready pipeline.
package bootstrap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/cover-service/internal/assets"
	"github.com/SyedDaiam9101/cover-service/internal/config"
	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/labels"
	"github.com/SyedDaiam9101/cover-service/internal/pipeline"
)

// Classifier owns the engine behind a pipeline
type Classifier struct {
	Pipeline *pipeline.Pipeline
	Engine   inference.InferenceEngine
}

// Close releases the inference engine
func (c *Classifier) Close() error {
	if c == nil || c.Engine == nil {
		return nil
	}
	return c.Engine.Close()
}

// Sources are the filesystems assets are read from and cached into
type Sources struct {
	Bundle fs.FS
	Cache  afero.Fs
}

// DefaultSources reads the bundle from cfg.AssetsDir and caches on the OS filesystem
func DefaultSources(cfg *config.Config) Sources {
	return Sources{
		Bundle: os.DirFS(cfg.AssetsDir),
		Cache:  afero.NewOsFs(),
	}
}

// CacheDir returns cfg.CacheDir, or a per-user cache directory when unset
func CacheDir(cfg *config.Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cover-service")
	}
	return filepath.Join(os.TempDir(), "cover-service")
}

// Load builds a Classifier. With UseMockInference set, the model is never
// opened and a mock engine returns a fixed winner.
func Load(cfg *config.Config, src Sources, logger *zap.Logger) (*Classifier, error) {
	table, err := labels.LoadFS(src.Bundle, cfg.Labels)
	if err != nil {
		return nil, err
	}
	logger.Info("label table loaded", zap.String("file", cfg.Labels), zap.Int("classes", table.Len()))

	var engine inference.InferenceEngine
	if cfg.UseMockInference {
		logger.Warn("using mock inference engine")
		engine = mockEngine(table.Len())
	} else {
		modelPath, err := assets.Materialize(src.Bundle, src.Cache, CacheDir(cfg), cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", inference.ErrModelLoad, err)
		}

		logger.Info("loading ONNX model", zap.String("path", modelPath))
		engine, err = inference.New(inference.Options{
			ModelPath:         modelPath,
			SharedLibraryPath: cfg.ORTLibrary,
			InputName:         cfg.InputName,
			OutputName:        cfg.OutputName,
			ImageSize:         cfg.ImageSize,
			NumClasses:        table.Len(),
		})
		if err != nil {
			return nil, err
		}
	}

	p := pipeline.New(engine, table,
		pipeline.WithImageSize(cfg.ImageSize),
		pipeline.WithLinkBase(cfg.LinkBase),
		pipeline.WithLogger(logger),
	)

	return &Classifier{Pipeline: p, Engine: engine}, nil
}

// mockEngine scores class 0 highest so the pipeline yields a full prediction
func mockEngine(classes int) *inference.MockInference {
	scores := make([]float32, classes)
	if classes > 0 {
		scores[0] = 1
	}
	return inference.NewMockWithScores(scores)
}
