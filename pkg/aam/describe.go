package aam

import (
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strings"
)

// LevelSummary is the read-only metadata of one pyramid level.
type LevelSummary struct {
	DownscaleFactor       float64
	Feature               string
	NChannels             int
	FrameWidth            int
	FrameHeight           int
	FrameTruePixels       int
	FrameLength           int // true pixels times channels
	NShapeComponents      int
	ShapeVariance         float64 // retained fraction, 0..1
	NAppearanceComponents int
	AppearanceVariance    float64
}

// Summary is a read-only snapshot of model metadata, decoupled from the
// synthesis core so presentation can evolve independently.
type Summary struct {
	Title             string
	NTrainingImages   int
	NLevels           int
	Downscale         float64
	ScaledShapeModels bool
	PyramidOnFeatures bool
	WarpName          string
	PatchHeight       int // zero for dense models
	PatchWidth        int
	Levels            []LevelSummary // coarsest first, like the model lists
}

// Snapshot captures the model's metadata for reporting.
func (m *AAM) Snapshot() Summary {
	s := Summary{
		Title:             m.title,
		NTrainingImages:   m.nTrainingImages,
		NLevels:           m.NLevels(),
		Downscale:         m.downscale,
		ScaledShapeModels: m.scaledShapeModels,
		PyramidOnFeatures: m.PyramidOnFeatures(),
		WarpName:          nameOfFunc(m.transform),
		PatchHeight:       m.patchHeight,
		PatchWidth:        m.patchWidth,
	}
	for i := 0; i < m.NLevels(); i++ {
		sm := m.shapeModels[i]
		am := m.appearanceModels[i]
		template := am.Mean()

		ls := LevelSummary{
			DownscaleFactor:       math.Pow(m.downscale, float64(m.NLevels()-i-1)),
			Feature:               m.featureName(i),
			NChannels:             template.Channels,
			FrameWidth:            template.Width,
			FrameHeight:           template.Height,
			FrameTruePixels:       template.NTruePixels(),
			NShapeComponents:      sm.NComponents(),
			ShapeVariance:         sm.VarianceRatio(),
			NAppearanceComponents: am.NComponents(),
			AppearanceVariance:    am.VarianceRatio(),
		}
		ls.FrameLength = ls.FrameTruePixels * ls.NChannels
		s.Levels = append(s.Levels, ls)
	}
	return s
}

func (m *AAM) featureName(level int) string {
	switch {
	case len(m.features) == 0:
		return "none"
	case len(m.features) == 1:
		return m.features[0].Name()
	default:
		return m.features[level].Name()
	}
}

// String renders the snapshot as the multi-paragraph human-readable summary.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title)
	fmt.Fprintf(&b, " - %d training images.\n", s.NTrainingImages)
	fmt.Fprintf(&b, " - %s warp.\n", s.WarpName)
	if s.PatchHeight > 0 {
		fmt.Fprintf(&b, " - Patch size is %dW x %dH.\n", s.PatchWidth, s.PatchHeight)
	}

	if s.NLevels > 1 {
		fmt.Fprintf(&b, " - Gaussian pyramid with %d levels and downscale factor of %g.\n",
			s.NLevels, s.Downscale)
		if s.ScaledShapeModels {
			b.WriteString("   - Each level has a scaled shape model (reference frame).\n")
		} else {
			b.WriteString("   - Shape models (reference frames) are not scaled.\n")
		}
		if s.PyramidOnFeatures {
			b.WriteString("   - Pyramid was applied on feature space.\n")
		} else {
			b.WriteString("   - Features were extracted at each pyramid level.\n")
		}
	} else {
		b.WriteString(" - No pyramid used.\n")
	}

	// Finest level last, reported first.
	for i := s.NLevels - 1; i >= 0; i-- {
		l := s.Levels[i]
		fmt.Fprintf(&b, "   - Level %d %s:\n", s.NLevels-i, downscaleLabel(l.DownscaleFactor))
		fmt.Fprintf(&b, "     - Feature is %s with %d %s per image.\n",
			l.Feature, l.NChannels, channelWord(l.NChannels))
		fmt.Fprintf(&b, "     - Reference frame of length %d (%d x %dC, %dW x %dH).\n",
			l.FrameLength, l.FrameTruePixels, l.NChannels, l.FrameWidth, l.FrameHeight)
		fmt.Fprintf(&b, "     - %d shape components (%.2f%% of variance).\n",
			l.NShapeComponents, l.ShapeVariance*100)
		fmt.Fprintf(&b, "     - %d appearance components (%.2f%% of variance).\n",
			l.NAppearanceComponents, l.AppearanceVariance*100)
	}
	return b.String()
}

// String renders the model's human-readable summary.
func (m *AAM) String() string {
	return m.Snapshot().String()
}

func downscaleLabel(factor float64) string {
	if factor == 1 {
		return "(no downscale)"
	}
	return fmt.Sprintf("(downscale by %g)", factor)
}

func channelWord(n int) string {
	if n == 1 {
		return "channel"
	}
	return "channels"
}

// nameOfFunc resolves a readable name for a configured callable, trimming the
// package path.
func nameOfFunc(fn any) string {
	if fn == nil {
		return "unknown"
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Sprintf("%T", fn)
	}
	pc := runtime.FuncForPC(v.Pointer())
	if pc == nil {
		return "func"
	}
	name := pc.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
