package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrgloom/menpofit/internal/demo"
	"github.com/mrgloom/menpofit/pkg/img"
)

// TestToImageGray verifies single-channel rendering and support normalization
func TestToImageGray(t *testing.T) {
	src := img.New(2, 1, 1)
	src.Mask = img.NewMask(2, 1)
	src.Mask.Set(0, 0, true)
	src.Mask.Set(1, 0, true)
	src.Set(0, 0, 0, 0.25)
	src.Set(1, 0, 0, 0.75)

	rendered := ToImage(src)
	gray, ok := rendered.(*image.Gray16)
	if !ok {
		t.Fatalf("Expected Gray16 output, got %T", rendered)
	}
	if gray.Gray16At(0, 0).Y != 0 {
		t.Errorf("Expected support minimum rendered black, got %d", gray.Gray16At(0, 0).Y)
	}
	if gray.Gray16At(1, 0).Y != 65535 {
		t.Errorf("Expected support maximum rendered white, got %d", gray.Gray16At(1, 0).Y)
	}
}

// TestToImageMaskedOut verifies pixels outside the support stay black
func TestToImageMaskedOut(t *testing.T) {
	src := img.New(2, 1, 1)
	src.Mask = img.NewMask(2, 1)
	src.Mask.Set(0, 0, true)
	src.Set(0, 0, 0, 1)
	src.Set(1, 0, 0, 1)

	gray := ToImage(src).(*image.Gray16)
	if gray.Gray16At(1, 0).Y != 0 {
		t.Errorf("Expected masked-out pixel black, got %d", gray.Gray16At(1, 0).Y)
	}
}

// TestToImageColor verifies three-channel instances render to RGBA
func TestToImageColor(t *testing.T) {
	src := img.New(1, 1, 3)
	src.Set(0, 0, 0, 1)

	if _, ok := ToImage(src).(*image.RGBA); !ok {
		t.Fatalf("Expected RGBA output for a 3-channel instance")
	}
}

// TestSaveFormats verifies format selection by extension
func TestSaveFormats(t *testing.T) {
	src := img.New(4, 4, 1)
	for i := range src.Pixels {
		src.Pixels[i] = float64(i) / float64(len(src.Pixels))
	}

	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.jpg", "out.bmp"} {
		path := filepath.Join(dir, "nested", name)
		if err := Save(src, path); err != nil {
			t.Errorf("Save %s failed: %v", name, err)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("Expected a non-empty file at %s", path)
		}
	}

	if err := Save(src, filepath.Join(dir, "out.gif")); err == nil {
		t.Error("Expected an error for an unsupported extension")
	}
}

// TestSaveModeSequence verifies the sweep writes one frame per step
func TestSaveModeSequence(t *testing.T) {
	m, err := demo.Build(demo.Params{Levels: 1, Downscale: 2})
	if err != nil {
		t.Fatalf("Failed to build model: %v", err)
	}

	dir := t.TempDir()
	if err := SaveModeSequence(m, ShapeMode, -1, 0, -2, 2, 3, dir); err != nil {
		t.Fatalf("SaveModeSequence failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		path := filepath.Join(dir, fmt.Sprintf("mode00_%02d.png", i))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected frame %s: %v", path, err)
		}
	}

	if err := SaveModeSequence(m, AppearanceMode, -1, 1, -1, 1, 2, dir); err != nil {
		t.Errorf("Appearance sweep failed: %v", err)
	}

	if err := SaveModeSequence(m, ShapeMode, -1, 0, -1, 1, 1, dir); err == nil {
		t.Error("Expected an error for a single-step sequence")
	}
	if err := SaveModeSequence(m, ShapeMode, -1, -1, -1, 1, 2, dir); err == nil {
		t.Error("Expected an error for a negative component index")
	}
}
