// Package feature defines the feature-extraction configuration a model
// carries. Extraction itself happens during training, outside this module;
// the model keeps the extractors as metadata and for on-demand use on
// individual images.
package feature

import (
	"github.com/mrgloom/menpofit/pkg/img"
	"github.com/mrgloom/menpofit/pkg/shape"
)

// Extractor turns an image into a feature image. The output keeps the input
// geometry (size, mask, landmarks); only the channel content changes.
type Extractor interface {
	Name() string
	Apply(im *img.Image) (*img.Image, error)
}

// Identity passes images through unchanged.
type Identity struct{}

func (Identity) Name() string { return "no_op" }

func (Identity) Apply(im *img.Image) (*img.Image, error) {
	return im.Copy(), nil
}

// Grayscale averages the channels into a single intensity channel.
type Grayscale struct{}

func (Grayscale) Name() string { return "greyscale" }

func (Grayscale) Apply(im *img.Image) (*img.Image, error) {
	out := img.New(im.Width, im.Height, 1)
	carryGeometry(out, im)
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			sum := 0.0
			for c := 0; c < im.Channels; c++ {
				sum += im.At(x, y, c)
			}
			out.Set(x, y, 0, sum/float64(im.Channels))
		}
	}
	return out, nil
}

// Gradient computes per-channel central-difference gradients, doubling the
// channel count: for every input channel the output holds its x derivative
// followed by its y derivative.
type Gradient struct{}

func (Gradient) Name() string { return "gradient" }

func (Gradient) Apply(im *img.Image) (*img.Image, error) {
	out := img.New(im.Width, im.Height, im.Channels*2)
	carryGeometry(out, im)
	for c := 0; c < im.Channels; c++ {
		for y := 0; y < im.Height; y++ {
			for x := 0; x < im.Width; x++ {
				x0, x1 := x-1, x+1
				if x0 < 0 {
					x0 = 0
				}
				if x1 > im.Width-1 {
					x1 = im.Width - 1
				}
				y0, y1 := y-1, y+1
				if y0 < 0 {
					y0 = 0
				}
				if y1 > im.Height-1 {
					y1 = im.Height - 1
				}
				var dx, dy float64
				if x1 > x0 {
					dx = (im.At(x1, y, c) - im.At(x0, y, c)) / float64(x1-x0)
				}
				if y1 > y0 {
					dy = (im.At(x, y1, c) - im.At(x, y0, c)) / float64(y1-y0)
				}
				out.Set(x, y, 2*c, dx)
				out.Set(x, y, 2*c+1, dy)
			}
		}
	}
	return out, nil
}

func carryGeometry(dst, src *img.Image) {
	if src.Mask != nil {
		dst.Mask = src.Mask.Copy()
	}
	for name, s := range src.Landmarks {
		dst.Landmarks[name] = shape.Translate(s, 0, 0)
	}
}
