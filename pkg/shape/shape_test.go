package shape

import (
	"math"
	"testing"
)

// TestBounds verifies the bounding box of a point cloud
func TestBounds(t *testing.T) {
	p := NewPointCloud([]Point{{X: -2, Y: 1}, {X: 5, Y: -3}, {X: 0, Y: 7}})

	min, max := p.Bounds()
	if min.X != -2 || min.Y != -3 {
		t.Errorf("Expected min (-2, -3), got (%g, %g)", min.X, min.Y)
	}
	if max.X != 5 || max.Y != 7 {
		t.Errorf("Expected max (5, 7), got (%g, %g)", max.X, max.Y)
	}
}

// TestCentroid verifies the mean position of a cloud
func TestCentroid(t *testing.T) {
	p := NewPointCloud([]Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}})

	c := p.Centroid()
	if math.Abs(c.X-2) > 1e-12 || math.Abs(c.Y-1) > 1e-12 {
		t.Errorf("Expected centroid (2, 1), got (%g, %g)", c.X, c.Y)
	}
}

// TestNewPointCloudCopies verifies that the constructor does not alias the
// caller's slice
func TestNewPointCloudCopies(t *testing.T) {
	pts := []Point{{X: 1, Y: 2}}
	p := NewPointCloud(pts)

	pts[0].X = 99
	if p.Points[0].X != 1 {
		t.Error("Point cloud aliases the caller's point slice")
	}
}

// TestTranslatePreservesKind verifies that translation returns the same
// concrete shape kind and leaves the input untouched
func TestTranslatePreservesKind(t *testing.T) {
	mesh := NewTriMesh(
		[]Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}},
		[][3]int{{0, 1, 2}},
	)

	out := Translate(mesh, 10, 20)

	moved, ok := out.(*TriMesh)
	if !ok {
		t.Fatalf("Expected *TriMesh, got %T", out)
	}
	if moved.Points[1].X != 12 || moved.Points[1].Y != 20 {
		t.Errorf("Expected translated point (12, 20), got (%g, %g)", moved.Points[1].X, moved.Points[1].Y)
	}
	if len(moved.Triangles) != 1 {
		t.Errorf("Expected 1 triangle after translation, got %d", len(moved.Triangles))
	}
	if mesh.Points[1].X != 2 {
		t.Error("Translation mutated the input shape")
	}

	cloud := NewPointCloud([]Point{{X: 1, Y: 1}})
	if _, ok := Translate(cloud, 1, 1).(*PointCloud); !ok {
		t.Error("Expected translated cloud to stay a *PointCloud")
	}
}

// TestTriangulationFromMesh verifies that a mesh contributes its own
// triangle list
func TestTriangulationFromMesh(t *testing.T) {
	mesh := NewTriMesh(
		[]Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}},
		[][3]int{{0, 1, 2}},
	)

	tris, err := Triangulation(mesh)
	if err != nil {
		t.Fatalf("Triangulation failed: %v", err)
	}
	if len(tris) != 1 || tris[0] != [3]int{0, 1, 2} {
		t.Errorf("Expected the mesh's own triangle, got %v", tris)
	}
}

// TestTriangulationFallback verifies the Delaunay fallback for shapes
// without a triangle list
func TestTriangulationFallback(t *testing.T) {
	square := NewPointCloud([]Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})

	tris, err := Triangulation(square)
	if err != nil {
		t.Fatalf("Delaunay fallback failed: %v", err)
	}
	// A convex quad triangulates into exactly two triangles.
	if len(tris) != 2 {
		t.Errorf("Expected 2 triangles for a square, got %d", len(tris))
	}

	// Every point index must be referenced and in range.
	seen := make(map[int]bool)
	for _, tri := range tris {
		for _, v := range tri {
			if v < 0 || v >= 4 {
				t.Errorf("Triangle index %d out of range", v)
			}
			seen[v] = true
		}
	}
	if len(seen) != 4 {
		t.Errorf("Expected all 4 points referenced, got %d", len(seen))
	}
}

// TestTriangulationTooFewPoints verifies the error path for degenerate input
func TestTriangulationTooFewPoints(t *testing.T) {
	p := NewPointCloud([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if _, err := Triangulation(p); err == nil {
		t.Error("Expected an error for fewer than 3 points")
	}
}

// TestTriMeshValidate verifies structural invariant checking
func TestTriMeshValidate(t *testing.T) {
	good := NewTriMesh(
		[]Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		[][3]int{{0, 1, 2}},
	)
	if err := good.Validate(); err != nil {
		t.Errorf("Valid mesh rejected: %v", err)
	}

	bad := NewTriMesh(
		[]Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		[][3]int{{0, 1, 3}},
	)
	if err := bad.Validate(); err == nil {
		t.Error("Expected an error for an out-of-range triangle index")
	}
}
