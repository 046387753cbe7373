package transform

import (
	"math"
	"testing"

	"github.com/mrgloom/menpofit/pkg/shape"
)

const tol = 1e-9

// TestAffineRecovery verifies that the least-squares fit recovers a known
// affine transform exactly from noiseless correspondences
func TestAffineRecovery(t *testing.T) {
	// x' = 2x - y + 3, y' = x + 0.5y - 1
	want := Affine{A: 2, B: -1, Tx: 3, C: 1, D: 0.5, Ty: -1}

	src := shape.NewPointCloud([]shape.Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 2, Y: 1},
	})
	dst := shape.NewPointCloud(make([]shape.Point, src.Len()))
	for i, p := range src.Points {
		q, _ := want.Apply(p)
		dst.Points[i] = q
	}

	got, err := NewAlignmentAffine(src, dst)
	if err != nil {
		t.Fatalf("Alignment fit failed: %v", err)
	}

	coeffs := []struct {
		name      string
		got, want float64
	}{
		{"A", got.A, want.A}, {"B", got.B, want.B}, {"Tx", got.Tx, want.Tx},
		{"C", got.C, want.C}, {"D", got.D, want.D}, {"Ty", got.Ty, want.Ty},
	}
	for _, c := range coeffs {
		if math.Abs(c.got-c.want) > 1e-8 {
			t.Errorf("Coefficient %s: expected %g, got %g", c.name, c.want, c.got)
		}
	}
}

// TestAffineInverseRoundTrip verifies that applying a transform and its
// inverse returns the original point
func TestAffineInverseRoundTrip(t *testing.T) {
	a := &Affine{A: 2, B: 1, Tx: -3, C: 0, D: 4, Ty: 7}
	inv, err := a.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	for _, p := range []shape.Point{{X: 0, Y: 0}, {X: 1.5, Y: -2.25}, {X: 100, Y: 42}} {
		q, _ := a.Apply(p)
		back, _ := inv.Apply(q)
		if math.Abs(back.X-p.X) > tol || math.Abs(back.Y-p.Y) > tol {
			t.Errorf("Round trip of (%g, %g) gave (%g, %g)", p.X, p.Y, back.X, back.Y)
		}
	}
}

// TestAffineSingularInverse verifies the error path for a rank-deficient
// linear part
func TestAffineSingularInverse(t *testing.T) {
	a := &Affine{A: 1, B: 2, C: 2, D: 4}
	if _, err := a.Inverse(); err == nil {
		t.Error("Expected an error inverting a singular affine transform")
	}
}

// TestAffinePointCountMismatch verifies construction-time failure for
// incompatible landmark sets
func TestAffinePointCountMismatch(t *testing.T) {
	src := shape.NewPointCloud([]shape.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	dst := shape.NewPointCloud([]shape.Point{{X: 0, Y: 0}, {X: 1, Y: 0}})
	if _, err := NewAlignmentAffine(src, dst); err == nil {
		t.Error("Expected an error for mismatched point counts")
	}
}

// TestPiecewiseAffineIdentity verifies that a warp between identical
// landmark sets maps interior points to themselves
func TestPiecewiseAffineIdentity(t *testing.T) {
	pts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	src := shape.NewPointCloud(pts)
	dst := shape.NewPointCloud(pts)

	w, err := NewPiecewiseAffine(src, dst)
	if err != nil {
		t.Fatalf("Piecewise affine construction failed: %v", err)
	}

	for _, p := range []shape.Point{{X: 5, Y: 5}, {X: 1, Y: 1}, {X: 9.5, Y: 3.25}} {
		q, ok := w.Apply(p)
		if !ok {
			t.Fatalf("Interior point (%g, %g) reported outside the domain", p.X, p.Y)
		}
		if math.Abs(q.X-p.X) > tol || math.Abs(q.Y-p.Y) > tol {
			t.Errorf("Identity warp moved (%g, %g) to (%g, %g)", p.X, p.Y, q.X, q.Y)
		}
	}
}

// TestPiecewiseAffineScaling verifies the per-triangle affine mapping on a
// uniformly scaled target
func TestPiecewiseAffineScaling(t *testing.T) {
	srcPts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	dstPts := make([]shape.Point, len(srcPts))
	for i, p := range srcPts {
		dstPts[i] = shape.Point{X: 2 * p.X, Y: 2 * p.Y}
	}

	w, err := NewPiecewiseAffine(shape.NewPointCloud(srcPts), shape.NewPointCloud(dstPts))
	if err != nil {
		t.Fatalf("Piecewise affine construction failed: %v", err)
	}

	for _, p := range []shape.Point{{X: 2, Y: 3}, {X: 7, Y: 7}, {X: 5, Y: 5}} {
		q, ok := w.Apply(p)
		if !ok {
			t.Fatalf("Interior point (%g, %g) reported outside the domain", p.X, p.Y)
		}
		if math.Abs(q.X-2*p.X) > tol || math.Abs(q.Y-2*p.Y) > tol {
			t.Errorf("Expected (%g, %g), got (%g, %g)", 2*p.X, 2*p.Y, q.X, q.Y)
		}
	}
}

// TestPiecewiseAffineOutsideDomain verifies that points outside the source
// triangulation are reported as unmappable
func TestPiecewiseAffineOutsideDomain(t *testing.T) {
	pts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	w, err := NewPiecewiseAffine(shape.NewPointCloud(pts), shape.NewPointCloud(pts))
	if err != nil {
		t.Fatalf("Piecewise affine construction failed: %v", err)
	}

	if _, ok := w.Apply(shape.Point{X: -5, Y: -5}); ok {
		t.Error("Expected point outside the triangulation to be unmappable")
	}
}

// TestPiecewiseAffineUsesMeshTriangles verifies that a source mesh's own
// triangulation is honoured
func TestPiecewiseAffineUsesMeshTriangles(t *testing.T) {
	src := shape.NewTriMesh(
		[]shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}},
		[][3]int{{0, 1, 2}},
	)
	dst := shape.NewPointCloud([]shape.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}})

	w, err := NewPiecewiseAffine(src, dst)
	if err != nil {
		t.Fatalf("Piecewise affine construction failed: %v", err)
	}
	if w.NTriangles() != 1 {
		t.Errorf("Expected the mesh's single triangle, got %d", w.NTriangles())
	}
}

// TestPiecewiseAffineInverseRoundTrip verifies the swapped-direction inverse
func TestPiecewiseAffineInverseRoundTrip(t *testing.T) {
	srcPts := []shape.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	dstPts := make([]shape.Point, len(srcPts))
	for i, p := range srcPts {
		dstPts[i] = shape.Point{X: p.X + 4, Y: p.Y - 2}
	}

	w, err := NewPiecewiseAffine(shape.NewPointCloud(srcPts), shape.NewPointCloud(dstPts))
	if err != nil {
		t.Fatalf("Piecewise affine construction failed: %v", err)
	}
	inv, err := w.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	p := shape.Point{X: 6, Y: 4}
	q, ok := w.Apply(p)
	if !ok {
		t.Fatal("Forward warp reported point outside domain")
	}
	back, ok := inv.Apply(q)
	if !ok {
		t.Fatal("Inverse warp reported point outside domain")
	}
	if math.Abs(back.X-p.X) > tol || math.Abs(back.Y-p.Y) > tol {
		t.Errorf("Round trip of (%g, %g) gave (%g, %g)", p.X, p.Y, back.X, back.Y)
	}
}
