// Package preprocess turns captured photographs into the fixed-size tensor the
// cover classifier was trained on.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ImageSize is the side length of the square classifier input.
const ImageSize = 224

// ErrDegenerateImage is returned for zero-area images or a non-positive target size.
var ErrDegenerateImage = errors.New("degenerate image")

// Layout describes where the scaled image sits on the square canvas.
type Layout struct {
	Size         int
	ScaledWidth  int
	ScaledHeight int
	PadTop       int
	PadBottom    int
	PadLeft      int
	PadRight     int
}

// Geometry computes the letterbox layout for a width x height image on a
// size x size canvas. The longer side becomes size and the shorter side is
// rounded half to even. The leading pad (top or left) is ceil of half the
// remaining space, so an odd remainder leaves the extra black row or column
// on the leading side.
func Geometry(width, height, size int) (Layout, error) {
	if width <= 0 || height <= 0 || size <= 0 {
		return Layout{}, fmt.Errorf("%w: %dx%d to %d", ErrDegenerateImage, width, height, size)
	}

	l := Layout{Size: size}
	if height >= width {
		l.ScaledHeight = size
		l.ScaledWidth = scaleSide(width, height, size)
		l.PadLeft = ceilHalf(size - l.ScaledWidth)
	} else {
		l.ScaledWidth = size
		l.ScaledHeight = scaleSide(height, width, size)
		l.PadTop = ceilHalf(size - l.ScaledHeight)
	}
	l.PadRight = size - l.ScaledWidth - l.PadLeft
	l.PadBottom = size - l.ScaledHeight - l.PadTop

	return l, nil
}

// Normalize scales img preserving its aspect ratio and composites it onto an
// opaque black size x size canvas according to Geometry.
func Normalize(img image.Image, size int) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDegenerateImage)
	}
	b := img.Bounds()

	l, err := Geometry(b.Dx(), b.Dy(), size)
	if err != nil {
		return nil, err
	}

	scaled := resize.Resize(uint(l.ScaledWidth), uint(l.ScaledHeight), img, resize.Bilinear)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	target := image.Rect(l.PadLeft, l.PadTop, l.PadLeft+l.ScaledWidth, l.PadTop+l.ScaledHeight)
	draw.Draw(canvas, target, scaled, scaled.Bounds().Min, draw.Over)

	return canvas, nil
}

func scaleSide(shorter, longer, size int) int {
	n := int(math.RoundToEven(float64(shorter) / float64(longer) * float64(size)))
	if n < 1 {
		return 1
	}
	return n
}

func ceilHalf(n int) int {
	return (n + 1) / 2
}
