// Package frame builds reference frames: blank masked images whose support
// and "source" landmarks are derived from a shape instance. The dense builder
// fills the shape's triangulation; the patch builder tiles a fixed rectangle
// at every landmark.
package frame

import (
	"fmt"
	"math"

	"github.com/mrgloom/menpofit/pkg/img"
	"github.com/mrgloom/menpofit/pkg/shape"
)

// Boundary is the margin, in pixels, left around the shape on every side of
// a reference frame.
const Boundary = 3

// Build constructs a dense reference frame for the shape. The shape's own
// triangulation is used when it is a mesh; unstructured clouds are Delaunay
// triangulated, so a triangulation-free shape is not an error. The returned
// image is single channel, zero filled, with the mask covering the
// triangulated region and the translated shape attached as the "source"
// landmark group.
func Build(s shape.Shape) (*img.Image, error) {
	if s.Cloud().Len() < 3 {
		return nil, fmt.Errorf("reference frame: need at least 3 points, got %d", s.Cloud().Len())
	}
	tris, err := shape.Triangulation(s)
	if err != nil {
		return nil, fmt.Errorf("reference frame: %w", err)
	}

	frame, translated := blankFrame(s)
	mesh := shape.NewTriMesh(translated.Cloud().Points, tris)
	frame.Landmarks[img.SourceGroup] = mesh

	for _, tri := range tris {
		rasterizeTriangle(frame.Mask,
			mesh.Points[tri[0]], mesh.Points[tri[1]], mesh.Points[tri[2]])
	}
	return frame, nil
}

// BuildPatch constructs a patch-based reference frame: a patchHeight by
// patchWidth rectangle of support centred at every landmark. The translated
// shape keeps its concrete kind in the "source" group.
func BuildPatch(s shape.Shape, patchHeight, patchWidth int) (*img.Image, error) {
	if patchHeight < 1 || patchWidth < 1 {
		return nil, fmt.Errorf("reference frame: invalid patch shape (%d, %d)", patchHeight, patchWidth)
	}
	if s.Cloud().Len() == 0 {
		return nil, fmt.Errorf("reference frame: empty shape")
	}

	frame, translated := blankFrame(s)
	frame.Landmarks[img.SourceGroup] = translated

	for _, p := range translated.Cloud().Points {
		x0 := int(math.Round(p.X)) - patchWidth/2
		y0 := int(math.Round(p.Y)) - patchHeight/2
		for y := y0; y < y0+patchHeight; y++ {
			for x := x0; x < x0+patchWidth; x++ {
				if x < 0 || y < 0 || x >= frame.Width || y >= frame.Height {
					continue
				}
				frame.Mask.Set(x, y, true)
			}
		}
	}
	return frame, nil
}

// blankFrame allocates the zero-filled masked image spanning the shape's
// bounds plus the boundary margin, and returns the shape translated into
// frame coordinates.
func blankFrame(s shape.Shape) (*img.Image, shape.Shape) {
	min, max := s.Cloud().Bounds()
	width := int(math.Ceil(max.X-min.X)) + 2*Boundary + 1
	height := int(math.Ceil(max.Y-min.Y)) + 2*Boundary + 1

	frame := img.New(width, height, 1)
	frame.Mask = img.NewMask(width, height)

	translated := shape.Translate(s, float64(Boundary)-min.X, float64(Boundary)-min.Y)
	return frame, translated
}

// rasterizeTriangle marks every pixel whose centre falls inside the triangle.
func rasterizeTriangle(m *img.Mask, a, b, c shape.Point) {
	minX := int(math.Floor(min3(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max3(a.X, b.X, c.X)))
	minY := int(math.Floor(min3(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max3(a.Y, b.Y, c.Y)))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > m.Width-1 {
		maxX = m.Width - 1
	}
	if maxY > m.Height-1 {
		maxY = m.Height - 1
	}

	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det == 0 {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px := float64(x)
			py := float64(y)
			l1 := ((b.Y-c.Y)*(px-c.X) + (c.X-b.X)*(py-c.Y)) / det
			l2 := ((c.Y-a.Y)*(px-c.X) + (a.X-c.X)*(py-c.Y)) / det
			l3 := 1 - l1 - l2
			if l1 >= 0 && l2 >= 0 && l3 >= 0 {
				m.Set(x, y, true)
			}
		}
	}
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }
