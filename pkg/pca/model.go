// Package pca implements the linear subspace model the deformable model
// samples from: a mean vector, an ordered set of principal components and
// their eigenvalues. Fitting the model from training data happens elsewhere;
// this package only reconstructs instances from coefficient vectors.
package pca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Model is a linear subspace model over flat float64 vectors. Instances are
// reconstructed as mean + componentsᵀ·weights.
type Model struct {
	mean        []float64
	components  *mat.Dense // k×d, one principal component per row
	eigenvalues []float64  // k values, descending, non-negative
	active      int
}

// New creates a subspace model. The component matrix must have one row per
// eigenvalue and one column per mean element, and the eigenvalues must be
// non-negative and sorted in descending order. All active components are
// retained initially.
func New(mean []float64, components *mat.Dense, eigenvalues []float64) (*Model, error) {
	rows, cols := components.Dims()
	if rows != len(eigenvalues) {
		return nil, fmt.Errorf("pca: %d component rows but %d eigenvalues", rows, len(eigenvalues))
	}
	if cols != len(mean) {
		return nil, fmt.Errorf("pca: component dimension %d does not match mean dimension %d", cols, len(mean))
	}
	for i, ev := range eigenvalues {
		if ev < 0 {
			return nil, fmt.Errorf("pca: eigenvalue %d is negative (%g)", i, ev)
		}
		if i > 0 && ev > eigenvalues[i-1] {
			return nil, fmt.Errorf("pca: eigenvalues not in descending order at index %d", i)
		}
	}

	m := &Model{
		mean:        append([]float64(nil), mean...),
		components:  mat.DenseCopyOf(components),
		eigenvalues: append([]float64(nil), eigenvalues...),
		active:      len(eigenvalues),
	}
	return m, nil
}

// Dimension returns the length of an instance vector.
func (m *Model) Dimension() int { return len(m.mean) }

// NComponents returns the total number of retained components.
func (m *Model) NComponents() int { return len(m.eigenvalues) }

// NActiveComponents returns the number of components currently in use.
func (m *Model) NActiveComponents() int { return m.active }

// SetNActiveComponents restricts the model to its first n components.
func (m *Model) SetNActiveComponents(n int) error {
	if n < 0 || n > len(m.eigenvalues) {
		return fmt.Errorf("pca: active components %d out of range [0, %d]", n, len(m.eigenvalues))
	}
	m.active = n
	return nil
}

// Mean returns a copy of the mean vector.
func (m *Model) Mean() []float64 {
	return append([]float64(nil), m.mean...)
}

// Eigenvalues returns a copy of the eigenvalue sequence.
func (m *Model) Eigenvalues() []float64 {
	return append([]float64(nil), m.eigenvalues...)
}

// VarianceRatio returns the fraction of total modelled variance captured by
// the active components.
func (m *Model) VarianceRatio() float64 {
	var total, kept float64
	for i, ev := range m.eigenvalues {
		total += ev
		if i < m.active {
			kept += ev
		}
	}
	if total == 0 {
		return 0
	}
	return kept / total
}

// Instance reconstructs a vector from subspace coefficients. Missing weights
// are treated as zero; weights beyond the active component count are
// silently truncated. The input slice is never modified.
func (m *Model) Instance(weights []float64) []float64 {
	out := m.Mean()
	n := len(weights)
	if n > m.active {
		n = m.active
	}
	if n == 0 {
		return out
	}

	w := mat.NewVecDense(n, append([]float64(nil), weights[:n]...))
	d := len(m.mean)
	sub := m.components.Slice(0, n, 0, d).(*mat.Dense)

	var delta mat.VecDense
	delta.MulVec(sub.T(), w)
	for j := 0; j < d; j++ {
		out[j] += delta.AtVec(j)
	}
	return out
}
