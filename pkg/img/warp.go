package img

import (
	"fmt"
	"math"

	"github.com/mrgloom/menpofit/pkg/shape"
	"github.com/mrgloom/menpofit/pkg/transform"
	"github.com/mrgloom/menpofit/pkg/utils"
)

// BilinearAt samples channel c at the real-valued position (x, y) with
// bilinear interpolation. Coordinates are clamped to the image rectangle, so
// sampling slightly outside the border is well defined.
func (im *Image) BilinearAt(x, y float64, c int) float64 {
	x = utils.Clamp(x, 0, float64(im.Width-1))
	y = utils.Clamp(y, 0, float64(im.Height-1))

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > im.Width-1 {
		x1 = im.Width - 1
	}
	if y1 > im.Height-1 {
		y1 = im.Height - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00 := im.At(x0, y0, c)
	v10 := im.At(x1, y0, c)
	v01 := im.At(x0, y1, c)
	v11 := im.At(x1, y1, c)

	top := v00*(1-fx) + v10*fx
	bot := v01*(1-fx) + v11*fx
	return top*(1-fy) + bot*fy
}

// WarpToMask resamples the image into the given mask's support. The
// transform maps positions in the output (mask) frame into this image's
// frame; every true pixel of the mask is filled by bilinear sampling at its
// mapped position. Pixels the transform cannot map stay zero.
//
// With warpLandmarks true the image's landmark groups are pushed through the
// inverse transform so they land in the output frame.
func (im *Image) WarpToMask(mask *Mask, t transform.Transform, warpLandmarks bool) (*Image, error) {
	if mask == nil {
		return nil, fmt.Errorf("warp to mask: nil mask")
	}
	out := New(mask.Width, mask.Height, im.Channels)
	out.Mask = mask.Copy()

	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			p, ok := t.Apply(shape.Point{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			for c := 0; c < im.Channels; c++ {
				out.Set(x, y, c, im.BilinearAt(p.X, p.Y, c))
			}
		}
	}

	if warpLandmarks && len(im.Landmarks) > 0 {
		inv, err := t.Inverse()
		if err != nil {
			return nil, fmt.Errorf("warp to mask: inverting transform for landmarks: %w", err)
		}
		for name, s := range im.Landmarks {
			mapped, err := applyToShape(inv, s)
			if err != nil {
				return nil, fmt.Errorf("warp to mask: landmark group %q: %w", name, err)
			}
			out.Landmarks[name] = mapped
		}
	}
	return out, nil
}

// applyToShape maps every point of a shape through a transform, preserving
// the concrete shape kind.
func applyToShape(t transform.Transform, s shape.Shape) (shape.Shape, error) {
	src := s.Cloud().Points
	mapped := make([]shape.Point, len(src))
	for i, p := range src {
		q, ok := t.Apply(p)
		if !ok {
			return nil, fmt.Errorf("point %d outside transform domain", i)
		}
		mapped[i] = q
	}
	if m, ok := s.(*shape.TriMesh); ok {
		return shape.NewTriMesh(mapped, m.Triangles), nil
	}
	return shape.NewPointCloud(mapped), nil
}
