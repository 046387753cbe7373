// Package shape provides the 2D point-set geometry used by the deformable
// model: plain point clouds, triangulated meshes, and the operations the
// synthesis pipeline needs (bounds, translation, triangulation).
package shape

import (
	"fmt"
	"math"
)

// Point is a 2D point in image coordinates (X is the column axis, Y the row
// axis).
type Point struct {
	X, Y float64
}

// Shape is any landmark configuration backed by a point cloud. TriMesh
// additionally carries a triangle list; everything else is treated as an
// unstructured cloud.
type Shape interface {
	// Cloud returns the underlying point cloud.
	Cloud() *PointCloud
}

// PointCloud is an ordered collection of 2D landmark points.
type PointCloud struct {
	Points []Point
}

// NewPointCloud creates a point cloud from a copy of the given points.
func NewPointCloud(points []Point) *PointCloud {
	cp := make([]Point, len(points))
	copy(cp, points)
	return &PointCloud{Points: cp}
}

// Cloud returns the point cloud itself, satisfying the Shape interface.
func (p *PointCloud) Cloud() *PointCloud { return p }

// Len returns the number of points in the cloud.
func (p *PointCloud) Len() int { return len(p.Points) }

// Bounds returns the axis-aligned bounding box of the cloud.
func (p *PointCloud) Bounds() (min, max Point) {
	min = Point{X: math.Inf(1), Y: math.Inf(1)}
	max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, pt := range p.Points {
		if pt.X < min.X {
			min.X = pt.X
		}
		if pt.Y < min.Y {
			min.Y = pt.Y
		}
		if pt.X > max.X {
			max.X = pt.X
		}
		if pt.Y > max.Y {
			max.Y = pt.Y
		}
	}
	return min, max
}

// Centroid returns the mean position of the cloud.
func (p *PointCloud) Centroid() Point {
	var c Point
	if len(p.Points) == 0 {
		return c
	}
	for _, pt := range p.Points {
		c.X += pt.X
		c.Y += pt.Y
	}
	n := float64(len(p.Points))
	return Point{X: c.X / n, Y: c.Y / n}
}

// Copy returns a deep copy of the cloud.
func (p *PointCloud) Copy() *PointCloud {
	return NewPointCloud(p.Points)
}

// TriMesh is a point cloud with an explicit triangle list. Each triangle is a
// triple of indices into the point slice.
type TriMesh struct {
	PointCloud
	Triangles [][3]int
}

// NewTriMesh creates a mesh from copies of the given points and triangles.
func NewTriMesh(points []Point, triangles [][3]int) *TriMesh {
	tris := make([][3]int, len(triangles))
	copy(tris, triangles)
	return &TriMesh{
		PointCloud: *NewPointCloud(points),
		Triangles:  tris,
	}
}

// Copy returns a deep copy of the mesh.
func (t *TriMesh) Copy() *TriMesh {
	return NewTriMesh(t.Points, t.Triangles)
}

// Translate returns a fresh shape of the same concrete kind with every point
// offset by (dx, dy). The input shape is left untouched.
func Translate(s Shape, dx, dy float64) Shape {
	switch m := s.(type) {
	case *TriMesh:
		out := m.Copy()
		shiftPoints(out.Points, dx, dy)
		return out
	default:
		out := s.Cloud().Copy()
		shiftPoints(out.Points, dx, dy)
		return out
	}
}

func shiftPoints(pts []Point, dx, dy float64) {
	for i := range pts {
		pts[i].X += dx
		pts[i].Y += dy
	}
}

// Validate checks the structural invariants of a mesh: at least three points
// and triangle indices within range.
func (t *TriMesh) Validate() error {
	n := len(t.Points)
	if n < 3 {
		return fmt.Errorf("trimesh needs at least 3 points, got %d", n)
	}
	for i, tri := range t.Triangles {
		for _, v := range tri {
			if v < 0 || v >= n {
				return fmt.Errorf("triangle %d references point %d, outside [0, %d)", i, v, n)
			}
		}
	}
	return nil
}
