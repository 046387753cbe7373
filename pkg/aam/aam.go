// Package aam implements the Active Appearance Model: a container of
// per-pyramid-level linear shape and appearance subspaces, and the
// synthesizer that renders novel instances from coefficient vectors.
package aam

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mrgloom/menpofit/pkg/feature"
	"github.com/mrgloom/menpofit/pkg/frame"
	"github.com/mrgloom/menpofit/pkg/img"
	"github.com/mrgloom/menpofit/pkg/shape"
	"github.com/mrgloom/menpofit/pkg/transform"
)

// ShapeModel is the shape subspace contract the synthesizer consumes.
// Weights beyond the retained components are silently truncated; missing
// weights are implicitly zero.
type ShapeModel interface {
	Mean() shape.Shape
	Instance(weights []float64) (shape.Shape, error)
	Eigenvalues() []float64
	NComponents() int
	NActiveComponents() int
	VarianceRatio() float64
}

// AppearanceModel is the appearance subspace contract. The mean image must
// carry a "source" landmark group: the canonical geometry the subspace was
// built against.
type AppearanceModel interface {
	Mean() *img.Image
	Instance(weights []float64) (*img.Image, error)
	Eigenvalues() []float64
	NComponents() int
	NActiveComponents() int
	VarianceRatio() float64
}

// FrameBuilder is the reference-frame construction strategy injected at model
// construction. The dense strategy fills the shape's triangulation; the patch
// strategy tiles a fixed rectangle at every landmark.
type FrameBuilder interface {
	BuildFrame(s shape.Shape) (*img.Image, error)
}

// DenseFrame builds triangulated dense reference frames. Shapes without a
// triangulation are Delaunay triangulated rather than rejected.
type DenseFrame struct{}

func (DenseFrame) BuildFrame(s shape.Shape) (*img.Image, error) {
	return frame.Build(s)
}

// PatchFrame builds patch-grid reference frames with a fixed patch size.
type PatchFrame struct {
	PatchHeight, PatchWidth int
}

func (p PatchFrame) BuildFrame(s shape.Shape) (*img.Image, error) {
	return frame.BuildPatch(s, p.PatchHeight, p.PatchWidth)
}

// Params collects everything an AAM is built from. The shape and appearance
// model lists are ordered coarsest to finest and must have equal length; the
// feature list holds either a single extractor (features were extracted once,
// the pyramid was built on the feature image) or one extractor per level.
type Params struct {
	ShapeModels       []ShapeModel
	AppearanceModels  []AppearanceModel
	NTrainingImages   int
	Transform         transform.Builder
	Features          []feature.Extractor
	ReferenceShape    *shape.PointCloud
	Downscale         float64
	ScaledShapeModels bool
}

// AAM is an Active Appearance Model. It is immutable after construction;
// every synthesis call reads the container and allocates a fresh result, so
// a single model is safe to share across goroutines.
type AAM struct {
	shapeModels       []ShapeModel
	appearanceModels  []AppearanceModel
	nTrainingImages   int
	transform         transform.Builder
	features          []feature.Extractor
	referenceShape    *shape.PointCloud
	downscale         float64
	scaledShapeModels bool

	frameBuilder FrameBuilder
	title        string
	patchHeight  int
	patchWidth   int
}

// New constructs a dense (triangulated mesh) Active Appearance Model.
func New(p Params) (*AAM, error) {
	return build(p, DenseFrame{}, "Active Appearance Model", 0, 0)
}

// NewPatchBased constructs the patch-based variant: identical contract to the
// dense model except reference frames are patch grids of the given size.
func NewPatchBased(p Params, patchHeight, patchWidth int) (*AAM, error) {
	if patchHeight < 1 || patchWidth < 1 {
		return nil, fmt.Errorf("aam: invalid patch shape (%d, %d)", patchHeight, patchWidth)
	}
	return build(p, PatchFrame{PatchHeight: patchHeight, PatchWidth: patchWidth},
		"Patch-Based Active Appearance Model", patchHeight, patchWidth)
}

func build(p Params, fb FrameBuilder, title string, patchH, patchW int) (*AAM, error) {
	if len(p.AppearanceModels) == 0 {
		return nil, fmt.Errorf("aam: no appearance models")
	}
	if len(p.ShapeModels) != len(p.AppearanceModels) {
		return nil, fmt.Errorf("aam: %d shape models but %d appearance models",
			len(p.ShapeModels), len(p.AppearanceModels))
	}
	if p.Transform == nil {
		return nil, fmt.Errorf("aam: nil transform builder")
	}
	if p.Downscale <= 0 {
		return nil, fmt.Errorf("aam: downscale must be positive, got %g", p.Downscale)
	}
	if n := len(p.Features); n != 0 && n != 1 && n != len(p.ShapeModels) {
		return nil, fmt.Errorf("aam: feature list length %d, want 1 or %d", n, len(p.ShapeModels))
	}

	m := &AAM{
		shapeModels:       append([]ShapeModel(nil), p.ShapeModels...),
		appearanceModels:  append([]AppearanceModel(nil), p.AppearanceModels...),
		nTrainingImages:   p.NTrainingImages,
		transform:         p.Transform,
		features:          append([]feature.Extractor(nil), p.Features...),
		downscale:         p.Downscale,
		scaledShapeModels: p.ScaledShapeModels,
		frameBuilder:      fb,
		title:             title,
		patchHeight:       patchH,
		patchWidth:        patchW,
	}
	if p.ReferenceShape != nil {
		m.referenceShape = p.ReferenceShape.Copy()
	}
	return m, nil
}

// NLevels returns the number of multi-resolution pyramid levels.
func (m *AAM) NLevels() int { return len(m.appearanceModels) }

// Title returns the model's display name.
func (m *AAM) Title() string { return m.title }

// NTrainingImages returns the number of images the model was built from.
func (m *AAM) NTrainingImages() int { return m.nTrainingImages }

// Downscale returns the ratio between consecutive pyramid levels.
func (m *AAM) Downscale() float64 { return m.downscale }

// ScaledShapeModels reports whether each level's reference frame is
// independently scaled, rather than all levels sharing the finest scale.
func (m *AAM) ScaledShapeModels() bool { return m.scaledShapeModels }

// PyramidOnFeatures reports whether a single feature extraction preceded
// pyramid construction (one shared extractor) as opposed to per-level
// extraction.
func (m *AAM) PyramidOnFeatures() bool { return len(m.features) <= 1 }

// ReferenceShape returns a copy of the geometry template used to normalize
// training image scale, or nil if none was recorded.
func (m *AAM) ReferenceShape() *shape.PointCloud {
	if m.referenceShape == nil {
		return nil
	}
	return m.referenceShape.Copy()
}

// PatchShape returns the patch size of the patch-based variant; ok is false
// for dense models.
func (m *AAM) PatchShape() (height, width int, ok bool) {
	if m.patchHeight == 0 {
		return 0, 0, false
	}
	return m.patchHeight, m.patchWidth, true
}

// levelIndex resolves a possibly negative level index, Python style: -1 is
// the last level.
func (m *AAM) levelIndex(level int) (int, error) {
	n := m.NLevels()
	i := level
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("aam: level %d out of range for %d levels", level, n)
	}
	return i, nil
}

// Instance synthesizes a novel model instance from shape and appearance
// coefficients given in standard-deviation units: each supplied coefficient
// is scaled by the square root of the matching eigenvalue before being
// handed to the subspace model. Nil coefficient slices select the mean, and
// the caller's slices are never modified. The level supports negative
// indices; -1 is the last level.
func (m *AAM) Instance(shapeWeights, appearanceWeights []float64, level int) (*img.Image, error) {
	i, err := m.levelIndex(level)
	if err != nil {
		return nil, err
	}
	sm := m.shapeModels[i]
	am := m.appearanceModels[i]

	if shapeWeights == nil {
		shapeWeights = []float64{0}
	}
	if appearanceWeights == nil {
		appearanceWeights = []float64{0}
	}

	shapeInstance, err := sm.Instance(scaleBySigma(shapeWeights, sm.Eigenvalues()))
	if err != nil {
		return nil, fmt.Errorf("aam: shape instance: %w", err)
	}
	appearanceInstance, err := am.Instance(scaleBySigma(appearanceWeights, am.Eigenvalues()))
	if err != nil {
		return nil, fmt.Errorf("aam: appearance instance: %w", err)
	}
	return m.synthesize(i, shapeInstance, appearanceInstance)
}

// RandomInstance synthesizes an instance from iid standard-normal
// coefficients over every active component of both subspaces. A nil rng
// falls back to a time-seeded source; reproducibility requires the caller to
// pass a seeded *rand.Rand.
func (m *AAM) RandomInstance(rng *rand.Rand, level int) (*img.Image, error) {
	i, err := m.levelIndex(level)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sm := m.shapeModels[i]
	am := m.appearanceModels[i]

	shapeInstance, err := sm.Instance(randomScaled(rng, sm.Eigenvalues(), sm.NActiveComponents()))
	if err != nil {
		return nil, fmt.Errorf("aam: shape instance: %w", err)
	}
	appearanceInstance, err := am.Instance(randomScaled(rng, am.Eigenvalues(), am.NActiveComponents()))
	if err != nil {
		return nil, fmt.Errorf("aam: appearance instance: %w", err)
	}
	return m.synthesize(i, shapeInstance, appearanceInstance)
}

// synthesize renders a shape/appearance instance pair: build a reference
// frame from the shape, warp the frame's landmarks onto the appearance
// template's source landmarks, and resample the appearance into the frame's
// support.
func (m *AAM) synthesize(level int, shapeInstance shape.Shape, appearanceInstance *img.Image) (*img.Image, error) {
	template := m.appearanceModels[level].Mean()
	landmarks, ok := template.Landmarks[img.SourceGroup]
	if !ok {
		return nil, fmt.Errorf("aam: appearance template has no %q landmark group", img.SourceGroup)
	}

	referenceFrame, err := m.frameBuilder.BuildFrame(shapeInstance)
	if err != nil {
		return nil, fmt.Errorf("aam: building reference frame: %w", err)
	}
	source, ok := referenceFrame.Landmarks[img.SourceGroup]
	if !ok {
		return nil, fmt.Errorf("aam: reference frame has no %q landmark group", img.SourceGroup)
	}

	warp, err := m.transform(source, landmarks)
	if err != nil {
		return nil, fmt.Errorf("aam: constructing warp: %w", err)
	}

	out, err := appearanceInstance.AsUnmasked(false).WarpToMask(referenceFrame.Mask, warp, true)
	if err != nil {
		return nil, fmt.Errorf("aam: warping appearance: %w", err)
	}
	return out, nil
}

// scaleBySigma scales coefficients given in standard-deviation units into
// subspace units, producing a fresh slice. Coefficients beyond the available
// eigenvalues are silently truncated.
func scaleBySigma(weights, eigenvalues []float64) []float64 {
	n := len(weights)
	if n > len(eigenvalues) {
		n = len(eigenvalues)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = weights[i] * math.Sqrt(eigenvalues[i])
	}
	return out
}

// randomScaled draws n standard-normal coefficients scaled by the eigenvalue
// square roots.
func randomScaled(rng *rand.Rand, eigenvalues []float64, n int) []float64 {
	if n > len(eigenvalues) {
		n = len(eigenvalues)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = rng.NormFloat64() * math.Sqrt(eigenvalues[i])
	}
	return out
}
