// internal/preprocess/tensor.go
package preprocess

import (
	"fmt"
	"image"
)

// ImageNet normalization constants the classifier was trained with.
var (
	mean = [3]float32{0.485, 0.456, 0.406}
	std  = [3]float32{0.229, 0.224, 0.225}
)

// Mean returns the per-channel normalization mean (R, G, B).
func Mean() [3]float32 { return mean }

// Std returns the per-channel normalization standard deviation (R, G, B).
func Std() [3]float32 { return std }

// Encode converts a square RGBA image into a channel-major float tensor:
// all R values, then G, then B, each row-major, normalized as
// (pixel/255 - Mean()[c]) / Std()[c].
func Encode(img *image.RGBA) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDegenerateImage)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || w != h {
		return nil, fmt.Errorf("%w: tensor input must be square, got %dx%d", ErrDegenerateImage, w, h)
	}

	plane := w * h
	tensor := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			px := img.Pix[off+x*4 : off+x*4+3]
			idx := y*w + x
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255.0
				tensor[c*plane+idx] = (v - mean[c]) / std[c]
			}
		}
	}

	return tensor, nil
}

// TensorLen returns the tensor length for a size x size input.
func TensorLen(size int) int {
	return 3 * size * size
}
