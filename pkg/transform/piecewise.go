package transform

import (
	"fmt"

	"github.com/mrgloom/menpofit/pkg/shape"
)

// barycentricEps tolerates points sitting exactly on a triangle edge.
const barycentricEps = 1e-9

// PiecewiseAffine warps points through per-triangle affine maps: a point is
// located in the source triangulation via barycentric coordinates and
// re-expressed against the corresponding target triangle. Points outside
// every source triangle are outside the warp's domain.
type PiecewiseAffine struct {
	source    *shape.PointCloud
	target    *shape.PointCloud
	triangles [][3]int
}

// NewPiecewiseAffine constructs a piecewise-affine warp from the source
// landmarks to the target landmarks. The source's triangulation is used when
// it carries one; otherwise a Delaunay triangulation of the source points is
// computed.
func NewPiecewiseAffine(source, target shape.Shape) (*PiecewiseAffine, error) {
	src := source.Cloud()
	dst := target.Cloud()
	if src.Len() != dst.Len() {
		return nil, fmt.Errorf("piecewise affine: point count mismatch (%d vs %d)", src.Len(), dst.Len())
	}
	tris, err := shape.Triangulation(source)
	if err != nil {
		return nil, fmt.Errorf("piecewise affine: %w", err)
	}
	return &PiecewiseAffine{
		source:    src.Copy(),
		target:    dst.Copy(),
		triangles: tris,
	}, nil
}

// Apply maps p from the source space to the target space. The boolean is
// false when p lies outside the source triangulation.
func (w *PiecewiseAffine) Apply(p shape.Point) (shape.Point, bool) {
	for _, tri := range w.triangles {
		a := w.source.Points[tri[0]]
		b := w.source.Points[tri[1]]
		c := w.source.Points[tri[2]]
		l1, l2, l3, ok := barycentric(p, a, b, c)
		if !ok {
			continue
		}
		ta := w.target.Points[tri[0]]
		tb := w.target.Points[tri[1]]
		tc := w.target.Points[tri[2]]
		return shape.Point{
			X: l1*ta.X + l2*tb.X + l3*tc.X,
			Y: l1*ta.Y + l2*tb.Y + l3*tc.Y,
		}, true
	}
	return shape.Point{}, false
}

// Inverse returns the warp running in the opposite direction over the same
// triangulation.
func (w *PiecewiseAffine) Inverse() (Transform, error) {
	return &PiecewiseAffine{
		source:    w.target,
		target:    w.source,
		triangles: w.triangles,
	}, nil
}

// NTriangles returns the number of triangles in the warp's triangulation.
func (w *PiecewiseAffine) NTriangles() int { return len(w.triangles) }

// barycentric returns the barycentric coordinates of p with respect to the
// triangle (a, b, c), with ok reporting containment. Degenerate triangles
// contain nothing.
func barycentric(p, a, b, c shape.Point) (l1, l2, l3 float64, ok bool) {
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det == 0 {
		return 0, 0, 0, false
	}
	l1 = ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / det
	l2 = ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / det
	l3 = 1 - l1 - l2
	if l1 < -barycentricEps || l2 < -barycentricEps || l3 < -barycentricEps {
		return 0, 0, 0, false
	}
	return l1, l2, l3, true
}

// PiecewiseAffineBuilder is a Builder producing piecewise-affine warps.
func PiecewiseAffineBuilder(source, target shape.Shape) (Transform, error) {
	return NewPiecewiseAffine(source, target)
}
