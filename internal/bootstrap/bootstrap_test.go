// internal/bootstrap/bootstrap_test.go
package bootstrap

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/SyedDaiam9101/cover-service/internal/config"
	"github.com/SyedDaiam9101/cover-service/internal/inference"
	"github.com/SyedDaiam9101/cover-service/internal/labels"
)

func testConfig() *config.Config {
	return &config.Config{
		CacheDir:         "/cache",
		Model:            "model.onnx",
		Labels:           "classes.txt",
		ImageSize:        224,
		LinkBase:         "http://nilf.it/",
		UseMockInference: true,
	}
}

func TestLoad_Mock(t *testing.T) {
	src := Sources{
		Bundle: fstest.MapFS{
			"classes.txt": {Data: []byte("NILF000001\tprimo\tautore\nNILF000002\tsecondo\tautore\n")},
		},
		Cache: afero.NewMemMapFs(),
	}

	c, err := Load(testConfig(), src, zap.NewNop())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer c.Close()

	if c.Pipeline.Labels().Len() != 2 {
		t.Errorf("Expected 2 classes, got %d", c.Pipeline.Labels().Len())
	}

	pred, err := c.Pipeline.Run(context.Background(), image.NewRGBA(image.Rect(0, 0, 20, 30)))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if pred.Identifier != "NILF000001" || pred.Link != "http://nilf.it/000001" {
		t.Errorf("Unexpected prediction %+v", pred)
	}

	// The model is never materialized in mock mode
	if ok, _ := afero.Exists(src.Cache, filepath.Join("/cache", "model.onnx")); ok {
		t.Error("Expected no model copy in mock mode")
	}
}

func TestLoad_MissingLabels(t *testing.T) {
	src := Sources{Bundle: fstest.MapFS{}, Cache: afero.NewMemMapFs()}

	_, err := Load(testConfig(), src, zap.NewNop())
	if !errors.Is(err, labels.ErrLoad) {
		t.Errorf("Expected labels.ErrLoad, got %v", err)
	}
}

func TestLoad_MissingModel(t *testing.T) {
	cfg := testConfig()
	cfg.UseMockInference = false
	src := Sources{
		Bundle: fstest.MapFS{"classes.txt": {Data: []byte("NILF000001\tprimo\tautore\n")}},
		Cache:  afero.NewMemMapFs(),
	}

	_, err := Load(cfg, src, zap.NewNop())
	if !errors.Is(err, inference.ErrModelLoad) {
		t.Errorf("Expected inference.ErrModelLoad, got %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	cfg := testConfig()
	if got := CacheDir(cfg); got != "/cache" {
		t.Errorf("Expected configured cache dir, got %s", got)
	}

	cfg.CacheDir = ""
	if got := CacheDir(cfg); filepath.Base(got) != "cover-service" {
		t.Errorf("Expected default cache dir to end in cover-service, got %s", got)
	}
}

func TestClose_Nil(t *testing.T) {
	var c *Classifier
	if err := c.Close(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
