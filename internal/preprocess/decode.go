// internal/preprocess/decode.go
package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the uploaded bytes are not a supported image.
var ErrDecode = errors.New("failed to decode image")

// Decode reads an encoded photograph and applies its EXIF orientation, so a
// cover shot in portrait mode reaches the normalizer upright.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrDegenerateImage, b.Dx(), b.Dy())
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	return Decode(bytes.NewReader(data))
}
