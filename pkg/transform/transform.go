// Package transform provides the point-set-driven warps used to map a
// synthesized reference frame onto an appearance template: a global
// least-squares affine alignment and a piecewise-affine warp over a
// triangulation. Both are invertible.
package transform

import (
	"github.com/mrgloom/menpofit/pkg/shape"
)

// Transform maps points from a source space into a target space. Apply
// reports false when the point lies outside the transform's domain (only the
// piecewise-affine warp has a bounded domain).
type Transform interface {
	Apply(p shape.Point) (shape.Point, bool)
	Inverse() (Transform, error)
}

// Builder constructs a transform aligning a source landmark set to a target
// landmark set. It is the constructor a model is configured with; synthesis
// invokes it once per rendered instance.
type Builder func(source, target shape.Shape) (Transform, error)
