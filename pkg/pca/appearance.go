package pca

import (
	"fmt"

	"github.com/mrgloom/menpofit/pkg/img"
	"github.com/mrgloom/menpofit/pkg/shape"
)

// AppearanceModel adapts a subspace model over flat pixel vectors into image
// instances. The template image supplies the geometry every instance shares:
// dimensions, channel count, support mask, and landmark groups (in
// particular the "source" group the synthesizer aligns against).
//
// The subspace covers the full rectangular support, not only masked pixels:
// synthesized appearances are warped unmasked, so off-mask pixels take part
// in interpolation and must be defined.
type AppearanceModel struct {
	model    *Model
	template *img.Image
}

// NewAppearanceModel wraps a subspace model whose dimension matches the
// template's pixel buffer.
func NewAppearanceModel(model *Model, template *img.Image) (*AppearanceModel, error) {
	want := template.Width * template.Height * template.Channels
	if model.Dimension() != want {
		return nil, fmt.Errorf("appearance model: subspace dimension %d does not fit a %dx%dx%d image",
			model.Dimension(), template.Width, template.Height, template.Channels)
	}
	return &AppearanceModel{model: model, template: template.Copy()}, nil
}

// Mean returns the mean appearance image.
func (a *AppearanceModel) Mean() *img.Image {
	return a.toImage(a.model.Mean())
}

// Instance reconstructs an appearance image from subspace coefficients.
func (a *AppearanceModel) Instance(weights []float64) (*img.Image, error) {
	return a.toImage(a.model.Instance(weights)), nil
}

// Eigenvalues returns the model's eigenvalue sequence.
func (a *AppearanceModel) Eigenvalues() []float64 { return a.model.Eigenvalues() }

// NActiveComponents returns the number of components in use.
func (a *AppearanceModel) NActiveComponents() int { return a.model.NActiveComponents() }

// NComponents returns the total number of retained components.
func (a *AppearanceModel) NComponents() int { return a.model.NComponents() }

// VarianceRatio returns the retained-variance fraction of the subspace.
func (a *AppearanceModel) VarianceRatio() float64 { return a.model.VarianceRatio() }

// Template returns a copy of the template image.
func (a *AppearanceModel) Template() *img.Image { return a.template.Copy() }

func (a *AppearanceModel) toImage(vec []float64) *img.Image {
	out, _ := img.FromPixels(a.template.Width, a.template.Height, a.template.Channels, vec)
	if a.template.Mask != nil {
		out.Mask = a.template.Mask.Copy()
	}
	for name, s := range a.template.Landmarks {
		out.Landmarks[name] = shape.Translate(s, 0, 0)
	}
	return out
}
