// Package img implements the masked multi-channel float image the model
// synthesizes into: a dense float64 pixel buffer with an optional boolean
// support mask and named embedded landmark groups.
package img

import (
	"fmt"

	"github.com/mrgloom/menpofit/pkg/shape"
)

// SourceGroup is the landmark group name the synthesis pipeline relies on: it
// holds the canonical geometry an appearance template was built against, and
// the landmark placement of a reference frame.
const SourceGroup = "source"

// Mask is a boolean pixel support over a rectangular grid.
type Mask struct {
	Width, Height int
	Bits          []bool
}

// NewMask creates an all-false mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports whether pixel (x, y) is inside the support. Out-of-bounds
// pixels are outside.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set marks pixel (x, y) as inside or outside the support.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// NTrue returns the number of pixels inside the support.
func (m *Mask) NTrue() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Copy returns a deep copy of the mask.
func (m *Mask) Copy() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Bits, m.Bits)
	return out
}

// Image is a dense float64 image with Channels values per pixel, stored
// row-major and channel-interleaved. A nil Mask means the whole rectangle is
// valid. Landmarks are named point-set annotations living in the image's own
// coordinate frame.
type Image struct {
	Width, Height, Channels int
	Pixels                  []float64
	Mask                    *Mask
	Landmarks               map[string]shape.Shape
}

// New creates a zero-filled unmasked image.
func New(width, height, channels int) *Image {
	return &Image{
		Width:     width,
		Height:    height,
		Channels:  channels,
		Pixels:    make([]float64, width*height*channels),
		Landmarks: make(map[string]shape.Shape),
	}
}

// FromPixels creates an image wrapping the given pixel buffer, which must
// hold width*height*channels values.
func FromPixels(width, height, channels int, pixels []float64) (*Image, error) {
	if len(pixels) != width*height*channels {
		return nil, fmt.Errorf("pixel buffer has %d values, want %d", len(pixels), width*height*channels)
	}
	return &Image{
		Width:     width,
		Height:    height,
		Channels:  channels,
		Pixels:    pixels,
		Landmarks: make(map[string]shape.Shape),
	}, nil
}

func (im *Image) index(x, y, c int) int {
	return (y*im.Width+x)*im.Channels + c
}

// At returns the value of channel c at pixel (x, y).
func (im *Image) At(x, y, c int) float64 {
	return im.Pixels[im.index(x, y, c)]
}

// Set assigns channel c at pixel (x, y).
func (im *Image) Set(x, y, c int, v float64) {
	im.Pixels[im.index(x, y, c)] = v
}

// InMask reports whether pixel (x, y) belongs to the image support.
func (im *Image) InMask(x, y int) bool {
	if im.Mask == nil {
		return x >= 0 && y >= 0 && x < im.Width && y < im.Height
	}
	return im.Mask.At(x, y)
}

// NTruePixels returns the size of the support.
func (im *Image) NTruePixels() int {
	if im.Mask == nil {
		return im.Width * im.Height
	}
	return im.Mask.NTrue()
}

// Copy returns a deep copy of the image, its mask and its landmarks.
func (im *Image) Copy() *Image {
	out := New(im.Width, im.Height, im.Channels)
	copy(out.Pixels, im.Pixels)
	if im.Mask != nil {
		out.Mask = im.Mask.Copy()
	}
	for name, s := range im.Landmarks {
		out.Landmarks[name] = shape.Translate(s, 0, 0)
	}
	return out
}

// AsUnmasked returns a view of the image without a mask. With copy false the
// pixel buffer and landmarks are shared with the receiver; with copy true
// everything is duplicated.
func (im *Image) AsUnmasked(copyData bool) *Image {
	if copyData {
		out := im.Copy()
		out.Mask = nil
		return out
	}
	return &Image{
		Width:     im.Width,
		Height:    im.Height,
		Channels:  im.Channels,
		Pixels:    im.Pixels,
		Landmarks: im.Landmarks,
	}
}

// Vector returns a copy of the pixel buffer as a flat vector, the layout the
// appearance subspace model is built over.
func (im *Image) Vector() []float64 {
	out := make([]float64, len(im.Pixels))
	copy(out, im.Pixels)
	return out
}
