package pca

import (
	"fmt"

	"github.com/mrgloom/menpofit/pkg/shape"
)

// ShapeModel adapts a subspace model over [x0, y0, x1, y1, ...] vectors into
// concrete shape instances. The template shape supplies the structure:
// instances of a mesh template are meshes sharing its triangle list.
type ShapeModel struct {
	model    *Model
	template shape.Shape
}

// NewShapeModel wraps a subspace model whose dimension is twice the template
// point count.
func NewShapeModel(model *Model, template shape.Shape) (*ShapeModel, error) {
	n := template.Cloud().Len()
	if model.Dimension() != 2*n {
		return nil, fmt.Errorf("shape model: subspace dimension %d does not fit %d points", model.Dimension(), n)
	}
	return &ShapeModel{model: model, template: shape.Translate(template, 0, 0)}, nil
}

// Mean returns the mean shape.
func (s *ShapeModel) Mean() shape.Shape {
	return s.toShape(s.model.Mean())
}

// Instance reconstructs a shape from subspace coefficients.
func (s *ShapeModel) Instance(weights []float64) (shape.Shape, error) {
	return s.toShape(s.model.Instance(weights)), nil
}

// Eigenvalues returns the model's eigenvalue sequence.
func (s *ShapeModel) Eigenvalues() []float64 { return s.model.Eigenvalues() }

// NActiveComponents returns the number of components in use.
func (s *ShapeModel) NActiveComponents() int { return s.model.NActiveComponents() }

// NComponents returns the total number of retained components.
func (s *ShapeModel) NComponents() int { return s.model.NComponents() }

// VarianceRatio returns the retained-variance fraction of the subspace.
func (s *ShapeModel) VarianceRatio() float64 { return s.model.VarianceRatio() }

func (s *ShapeModel) toShape(vec []float64) shape.Shape {
	pts := make([]shape.Point, len(vec)/2)
	for i := range pts {
		pts[i] = shape.Point{X: vec[2*i], Y: vec[2*i+1]}
	}
	if m, ok := s.template.(*shape.TriMesh); ok {
		return shape.NewTriMesh(pts, m.Triangles)
	}
	return shape.NewPointCloud(pts)
}
