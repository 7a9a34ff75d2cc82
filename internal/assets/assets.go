// Package assets resolves files shipped in the asset bundle into a writable
// cache directory, so native libraries that only accept paths can open them.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrMissingAsset is returned when the bundle does not contain the requested file.
var ErrMissingAsset = errors.New("asset not found in bundle")

// Materialize returns the path of name inside dir on dst, copying it from
// bundle first unless a non-empty copy is already there.
func Materialize(bundle fs.FS, dst afero.Fs, dir, name string) (string, error) {
	target := filepath.Join(dir, name)

	if info, err := dst.Stat(target); err == nil && !info.IsDir() && info.Size() > 0 {
		return target, nil
	}

	src, err := bundle.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingAsset, name)
		}
		return "", fmt.Errorf("failed to open asset %s: %w", name, err)
	}
	defer src.Close()

	if err := dst.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp := target + ".tmp"
	out, err := dst.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		dst.Remove(tmp)
		return "", fmt.Errorf("failed to copy asset %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		dst.Remove(tmp)
		return "", fmt.Errorf("failed to flush asset %s: %w", name, err)
	}

	if err := dst.Rename(tmp, target); err != nil {
		dst.Remove(tmp)
		return "", fmt.Errorf("failed to move asset into place: %w", err)
	}

	return target, nil
}
