// Package export renders synthesized model instances to standard Go images
// and saves them to disk, including the mode-variation sequences used to
// inspect what each retained component encodes.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/mrgloom/menpofit/pkg/aam"
	"github.com/mrgloom/menpofit/pkg/img"
)

// Mode selects which subspace a sequence sweeps.
type Mode int

const (
	ShapeMode Mode = iota
	AppearanceMode
)

// ToImage converts a float instance into a displayable image. Masked-out
// pixels are rendered black. Intensities are normalized over the support:
// single-channel instances become Gray16, three-channel instances RGBA;
// other channel counts are collapsed to their channel mean first.
func ToImage(src *img.Image) image.Image {
	lo, hi := supportRange(src)
	scale := 0.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}

	if src.Channels == 3 {
		out := image.NewRGBA(image.Rect(0, 0, src.Width, src.Height))
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				if !src.InMask(x, y) {
					continue
				}
				out.Set(x, y, color.RGBA{
					R: to8(src.At(x, y, 0), lo, scale),
					G: to8(src.At(x, y, 1), lo, scale),
					B: to8(src.At(x, y, 2), lo, scale),
					A: 255,
				})
			}
		}
		return out
	}

	out := image.NewGray16(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if !src.InMask(x, y) {
				continue
			}
			sum := 0.0
			for c := 0; c < src.Channels; c++ {
				sum += src.At(x, y, c)
			}
			v := (sum/float64(src.Channels) - lo) * scale
			out.SetGray16(x, y, color.Gray16{Y: uint16(math.Max(0, math.Min(65535, v*65535)))})
		}
	}
	return out
}

// Save writes an instance to path, choosing the format from the extension:
// .png, .jpg/.jpeg, or .bmp.
func Save(src *img.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	rendered := ToImage(src)
	switch filepath.Ext(path) {
	case ".png":
		err = png.Encode(f, rendered)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, rendered, &jpeg.Options{Quality: 95})
	case ".bmp":
		err = bmp.Encode(f, rendered)
	default:
		err = fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// SaveModeSequence renders a sweep of one component of one subspace from low
// to high standard deviations in the given number of steps, writing
// mode<component>_<step>.png frames into dir. The other subspace stays at
// its mean.
func SaveModeSequence(m *aam.AAM, mode Mode, level, component int, low, high float64, steps int, dir string) error {
	if steps < 2 {
		return fmt.Errorf("mode sequence needs at least 2 steps, got %d", steps)
	}
	if component < 0 {
		return fmt.Errorf("negative component index %d", component)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating sequence directory: %w", err)
	}

	for i := 0; i < steps; i++ {
		w := low + (high-low)*float64(i)/float64(steps-1)
		weights := make([]float64, component+1)
		weights[component] = w

		var instance *img.Image
		var err error
		switch mode {
		case ShapeMode:
			instance, err = m.Instance(weights, nil, level)
		case AppearanceMode:
			instance, err = m.Instance(nil, weights, level)
		default:
			return fmt.Errorf("unknown mode %d", mode)
		}
		if err != nil {
			return fmt.Errorf("rendering step %d: %w", i, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("mode%02d_%02d.png", component, i))
		if err := Save(instance, path); err != nil {
			return err
		}
	}
	return nil
}

// supportRange returns the min and max intensity over the masked support.
func supportRange(src *img.Image) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if !src.InMask(x, y) {
				continue
			}
			for c := 0; c < src.Channels; c++ {
				v := src.At(x, y, c)
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func to8(v, lo, scale float64) uint8 {
	n := (v - lo) * scale
	return uint8(math.Max(0, math.Min(255, n*255)))
}
