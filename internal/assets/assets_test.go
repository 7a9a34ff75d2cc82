// internal/assets/assets_test.go
package assets

import (
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
)

func TestMaterialize_CopiesOnFirstUse(t *testing.T) {
	bundle := fstest.MapFS{"model.onnx": {Data: []byte("weights")}}
	dst := afero.NewMemMapFs()

	path, err := Materialize(bundle, dst, "/cache", "model.onnx")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	if path != filepath.Join("/cache", "model.onnx") {
		t.Errorf("Unexpected path %s", path)
	}

	data, err := afero.ReadFile(dst, path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "weights" {
		t.Errorf("Expected copied contents, got %q", data)
	}

	if exists, _ := afero.Exists(dst, path+".tmp"); exists {
		t.Error("Expected temp file to be renamed away")
	}
}

func TestMaterialize_KeepsNonEmptyCopy(t *testing.T) {
	bundle := fstest.MapFS{"model.onnx": {Data: []byte("new weights")}}
	dst := afero.NewMemMapFs()
	if err := afero.WriteFile(dst, "/cache/model.onnx", []byte("cached"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	path, err := Materialize(bundle, dst, "/cache", "model.onnx")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	data, _ := afero.ReadFile(dst, path)
	if string(data) != "cached" {
		t.Errorf("Expected cached copy to be reused, got %q", data)
	}
}

func TestMaterialize_ReplacesEmptyCopy(t *testing.T) {
	bundle := fstest.MapFS{"model.onnx": {Data: []byte("weights")}}
	dst := afero.NewMemMapFs()
	if err := afero.WriteFile(dst, "/cache/model.onnx", nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	path, err := Materialize(bundle, dst, "/cache", "model.onnx")
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	data, _ := afero.ReadFile(dst, path)
	if string(data) != "weights" {
		t.Errorf("Expected empty copy to be replaced, got %q", data)
	}
}

func TestMaterialize_MissingAsset(t *testing.T) {
	_, err := Materialize(fstest.MapFS{}, afero.NewMemMapFs(), "/cache", "model.onnx")
	if !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("Expected ErrMissingAsset, got %v", err)
	}
}
