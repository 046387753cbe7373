package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/mrgloom/menpofit/pkg/shape"
)

// Affine is a global 2D affine map
//
//	x' = a*x + b*y + tx
//	y' = c*x + d*y + ty
type Affine struct {
	A, B, Tx float64
	C, D, Ty float64
}

// NewAlignmentAffine fits the least-squares affine transform taking the
// source landmarks onto the target landmarks. Both shapes must have the same
// number of points, at least three of them.
func NewAlignmentAffine(source, target shape.Shape) (*Affine, error) {
	src := source.Cloud().Points
	dst := target.Cloud().Points
	if len(src) != len(dst) {
		return nil, fmt.Errorf("alignment affine: point count mismatch (%d vs %d)", len(src), len(dst))
	}
	if len(src) < 3 {
		return nil, fmt.Errorf("alignment affine: need at least 3 points, got %d", len(src))
	}

	n := len(src)
	design := mat.NewDense(n, 3, nil)
	bx := mat.NewVecDense(n, nil)
	by := mat.NewVecDense(n, nil)
	for i, p := range src {
		design.Set(i, 0, p.X)
		design.Set(i, 1, p.Y)
		design.Set(i, 2, 1)
		bx.SetVec(i, dst[i].X)
		by.SetVec(i, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(design)

	var solX, solY mat.Dense
	if err := qr.SolveTo(&solX, false, bx); err != nil {
		return nil, fmt.Errorf("alignment affine: solving x coefficients: %w", err)
	}
	if err := qr.SolveTo(&solY, false, by); err != nil {
		return nil, fmt.Errorf("alignment affine: solving y coefficients: %w", err)
	}

	return &Affine{
		A: solX.At(0, 0), B: solX.At(1, 0), Tx: solX.At(2, 0),
		C: solY.At(0, 0), D: solY.At(1, 0), Ty: solY.At(2, 0),
	}, nil
}

// Apply maps a point through the affine transform. The domain is the whole
// plane, so the returned flag is always true.
func (a *Affine) Apply(p shape.Point) (shape.Point, bool) {
	return shape.Point{
		X: a.A*p.X + a.B*p.Y + a.Tx,
		Y: a.C*p.X + a.D*p.Y + a.Ty,
	}, true
}

// Inverse returns the inverse affine map. It fails when the linear part is
// singular.
func (a *Affine) Inverse() (Transform, error) {
	m := mat.NewDense(3, 3, []float64{
		a.A, a.B, a.Tx,
		a.C, a.D, a.Ty,
		0, 0, 1,
	})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("affine inverse: %w", err)
	}
	return &Affine{
		A: inv.At(0, 0), B: inv.At(0, 1), Tx: inv.At(0, 2),
		C: inv.At(1, 0), D: inv.At(1, 1), Ty: inv.At(1, 2),
	}, nil
}

// AffineBuilder is a Builder producing least-squares affine alignments.
func AffineBuilder(source, target shape.Shape) (Transform, error) {
	return NewAlignmentAffine(source, target)
}
