package shape

import (
	"fmt"

	"github.com/fogleman/delaunay"
)

// Triangulation returns the triangle list of a shape. A TriMesh contributes
// its own triangles; any other shape is triangulated with a Delaunay
// triangulation over its points. The unstructured path needs at least three
// non-collinear points.
func Triangulation(s Shape) ([][3]int, error) {
	if m, ok := s.(*TriMesh); ok && len(m.Triangles) > 0 {
		out := make([][3]int, len(m.Triangles))
		copy(out, m.Triangles)
		return out, nil
	}
	return Delaunay(s.Cloud())
}

// Delaunay computes a Delaunay triangulation of the cloud and returns it as a
// triangle index list.
func Delaunay(p *PointCloud) ([][3]int, error) {
	if p.Len() < 3 {
		return nil, fmt.Errorf("triangulation needs at least 3 points, got %d", p.Len())
	}
	pts := make([]delaunay.Point, p.Len())
	for i, pt := range p.Points {
		pts[i] = delaunay.Point{X: pt.X, Y: pt.Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("delaunay triangulation failed: %w", err)
	}
	if len(tri.Triangles) == 0 {
		return nil, fmt.Errorf("degenerate point set: no triangles produced")
	}
	out := make([][3]int, 0, len(tri.Triangles)/3)
	for i := 0; i+2 < len(tri.Triangles); i += 3 {
		out = append(out, [3]int{tri.Triangles[i], tri.Triangles[i+1], tri.Triangles[i+2]})
	}
	return out, nil
}
