// Package demo builds a small deterministic multi-level model so the
// synthesis tooling has something to render without a trained model on disk.
// The shape subspace carries a radial scaling mode and a vertical stretch
// mode over landmarks on a circle; the appearance subspace carries horizontal
// and vertical shading modes over a smooth gradient template.
package demo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mrgloom/menpofit/pkg/aam"
	"github.com/mrgloom/menpofit/pkg/feature"
	"github.com/mrgloom/menpofit/pkg/frame"
	"github.com/mrgloom/menpofit/pkg/pca"
	"github.com/mrgloom/menpofit/pkg/shape"
	"github.com/mrgloom/menpofit/pkg/transform"
)

const (
	nLandmarks      = 8
	finestRadius    = 16.0
	nTrainingImages = 32
)

// Params controls the generated model.
type Params struct {
	Levels      int
	Downscale   float64
	PatchBased  bool
	PatchHeight int
	PatchWidth  int
}

// Build constructs the demonstration model.
func Build(p Params) (*aam.AAM, error) {
	if p.Levels < 1 {
		return nil, fmt.Errorf("demo model: need at least 1 level, got %d", p.Levels)
	}
	if p.Downscale <= 0 {
		return nil, fmt.Errorf("demo model: downscale must be positive, got %g", p.Downscale)
	}

	var (
		shapeModels      []aam.ShapeModel
		appearanceModels []aam.AppearanceModel
		referenceShape   *shape.PointCloud
	)
	for i := 0; i < p.Levels; i++ {
		// Coarsest level first, finest last.
		radius := finestRadius / math.Pow(p.Downscale, float64(p.Levels-i-1))
		sm, meanShape, err := shapeLevel(radius)
		if err != nil {
			return nil, fmt.Errorf("demo model: level %d shape: %w", i, err)
		}
		am, err := appearanceLevel(meanShape)
		if err != nil {
			return nil, fmt.Errorf("demo model: level %d appearance: %w", i, err)
		}
		shapeModels = append(shapeModels, sm)
		appearanceModels = append(appearanceModels, am)
		referenceShape = meanShape.Cloud()
	}

	params := aam.Params{
		ShapeModels:       shapeModels,
		AppearanceModels:  appearanceModels,
		NTrainingImages:   nTrainingImages,
		Transform:         transform.PiecewiseAffineBuilder,
		Features:          []feature.Extractor{feature.Identity{}},
		ReferenceShape:    referenceShape,
		Downscale:         p.Downscale,
		ScaledShapeModels: true,
	}
	if p.PatchBased {
		return aam.NewPatchBased(params, p.PatchHeight, p.PatchWidth)
	}
	return aam.New(params)
}

// shapeLevel builds a 2-component shape subspace over landmarks evenly spaced
// on a circle of the given radius.
func shapeLevel(radius float64) (aam.ShapeModel, shape.Shape, error) {
	mean := make([]float64, 2*nLandmarks)
	radial := make([]float64, 2*nLandmarks)
	stretch := make([]float64, 2*nLandmarks)
	for j := 0; j < nLandmarks; j++ {
		theta := 2 * math.Pi * float64(j) / nLandmarks
		cos, sin := math.Cos(theta), math.Sin(theta)
		mean[2*j] = radius * cos
		mean[2*j+1] = radius * sin
		radial[2*j] = cos
		radial[2*j+1] = sin
		stretch[2*j+1] = sin
	}
	normalize(radial)
	normalize(stretch)

	components := mat.NewDense(2, 2*nLandmarks, nil)
	components.SetRow(0, radial)
	components.SetRow(1, stretch)
	eigenvalues := []float64{radius * radius / 16, radius * radius / 64}

	model, err := pca.New(mean, components, eigenvalues)
	if err != nil {
		return nil, nil, err
	}
	template := meanAsCloud(mean)
	sm, err := pca.NewShapeModel(model, template)
	if err != nil {
		return nil, nil, err
	}
	return sm, template, nil
}

// appearanceLevel builds a 2-component appearance subspace over the reference
// frame of the mean shape, with a linear-gradient mean texture.
func appearanceLevel(meanShape shape.Shape) (aam.AppearanceModel, error) {
	template, err := frame.Build(meanShape)
	if err != nil {
		return nil, err
	}
	w, h := template.Width, template.Height

	mean := make([]float64, w*h)
	horizontal := make([]float64, w*h)
	vertical := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			mean[i] = 0.25 + 0.5*float64(x)/float64(w-1)
			horizontal[i] = math.Cos(math.Pi * float64(x) / float64(w-1))
			vertical[i] = math.Cos(math.Pi * float64(y) / float64(h-1))
		}
	}
	normalize(horizontal)
	normalize(vertical)

	components := mat.NewDense(2, w*h, nil)
	components.SetRow(0, horizontal)
	components.SetRow(1, vertical)
	eigenvalues := []float64{0.05, 0.02}

	model, err := pca.New(mean, components, eigenvalues)
	if err != nil {
		return nil, err
	}
	return pca.NewAppearanceModel(model, template)
}

func meanAsCloud(vec []float64) *shape.PointCloud {
	pts := make([]shape.Point, len(vec)/2)
	for i := range pts {
		pts[i] = shape.Point{X: vec[2*i], Y: vec[2*i+1]}
	}
	return shape.NewPointCloud(pts)
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	n := math.Sqrt(sum)
	if n == 0 {
		return
	}
	for i := range v {
		v[i] /= n
	}
}
