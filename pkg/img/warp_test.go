package img

import (
	"math"
	"testing"

	"github.com/mrgloom/menpofit/pkg/shape"
	"github.com/mrgloom/menpofit/pkg/transform"
)

// rampImage builds a linear-intensity image so bilinear resampling is exact.
func rampImage(w, h int) *Image {
	im := New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			im.Set(x, y, 0, 0.05+0.1*float64(x)+0.07*float64(y))
		}
	}
	return im
}

// TestWarpToMaskIdentity verifies that an identity warp reproduces the image
// over the mask
func TestWarpToMaskIdentity(t *testing.T) {
	im := rampImage(6, 6)
	mask := NewMask(6, 6)
	for y := 1; y < 5; y++ {
		for x := 1; x < 5; x++ {
			mask.Set(x, y, true)
		}
	}

	identity := &transform.Affine{A: 1, D: 1}
	out, err := im.WarpToMask(mask, identity, false)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}

	if out.Width != 6 || out.Height != 6 || out.Channels != 1 {
		t.Fatalf("Unexpected output geometry %dx%dx%d", out.Width, out.Height, out.Channels)
	}
	if out.Mask.NTrue() != 16 {
		t.Errorf("Expected 16 true pixels, got %d", out.Mask.NTrue())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := 0.0
			if mask.At(x, y) {
				want = im.At(x, y, 0)
			}
			if math.Abs(out.At(x, y, 0)-want) > 1e-12 {
				t.Errorf("Pixel (%d, %d): expected %g, got %g", x, y, want, out.At(x, y, 0))
			}
		}
	}
}

// TestWarpToMaskTranslation verifies resampling through a translation
func TestWarpToMaskTranslation(t *testing.T) {
	im := rampImage(8, 8)
	mask := NewMask(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			mask.Set(x, y, true)
		}
	}

	// Output pixel (x, y) samples the source at (x+2, y+3).
	shift := &transform.Affine{A: 1, D: 1, Tx: 2, Ty: 3}
	out, err := im.WarpToMask(mask, shift, false)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := im.At(x+2, y+3, 0)
			if math.Abs(out.At(x, y, 0)-want) > 1e-12 {
				t.Errorf("Pixel (%d, %d): expected %g, got %g", x, y, want, out.At(x, y, 0))
			}
		}
	}
}

// TestWarpToMaskLandmarks verifies landmark propagation through the inverse
// transform
func TestWarpToMaskLandmarks(t *testing.T) {
	im := rampImage(8, 8)
	im.Landmarks[SourceGroup] = shape.NewTriMesh(
		[]shape.Point{{X: 3, Y: 4}, {X: 5, Y: 4}, {X: 4, Y: 6}},
		[][3]int{{0, 1, 2}},
	)

	mask := NewMask(8, 8)
	mask.Set(0, 0, true)

	shift := &transform.Affine{A: 1, D: 1, Tx: 2, Ty: 3}
	out, err := im.WarpToMask(mask, shift, true)
	if err != nil {
		t.Fatalf("Warp failed: %v", err)
	}

	lms, ok := out.Landmarks[SourceGroup]
	if !ok {
		t.Fatal("Warped image is missing the source landmark group")
	}
	mesh, ok := lms.(*shape.TriMesh)
	if !ok {
		t.Fatalf("Expected landmark kind to be preserved, got %T", lms)
	}
	// The inverse of the (+2, +3) shift moves landmarks by (-2, -3).
	want := shape.Point{X: 1, Y: 1}
	got := mesh.Points[0]
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
		t.Errorf("Expected landmark (%g, %g), got (%g, %g)", want.X, want.Y, got.X, got.Y)
	}
	if len(mesh.Triangles) != 1 {
		t.Errorf("Expected triangle list to survive the warp, got %d triangles", len(mesh.Triangles))
	}
}

// TestWarpToMaskNilMask verifies the error path
func TestWarpToMaskNilMask(t *testing.T) {
	im := rampImage(4, 4)
	identity := &transform.Affine{A: 1, D: 1}
	if _, err := im.WarpToMask(nil, identity, false); err == nil {
		t.Error("Expected an error for a nil mask")
	}
}
