package schematic

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cobotgen/pkg/render"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

const testSceneJSON = `{
  "name": "cell-a",
  "entities": [
    {"name": "Table", "role": "table", "position": [0, 0, 0.4],
     "shape": {"type": "box", "half_extent": [0.9, 0.6, 0.4]}},
    {"name": "Workpiece", "role": "workpiece", "position": [0, 0, 0.85],
     "shape": {"type": "box", "half_extent": [0.15, 0.1, 0.05]}},
    {"name": "Worker", "role": "worker", "position": [-1.2, 0, 0.9],
     "shape": {"type": "capsule", "radius": 0.25, "length": 1.8}},
    {"name": "TCP", "role": "tcp", "position": [0.31, 0.21, 1.0],
     "shape": {"type": "point"}}
  ]
}`

func testFrame(t *testing.T) render.Frame {
	t.Helper()
	sc, err := scene.Load([]byte(testSceneJSON))
	if err != nil {
		t.Fatalf("scene.Load: %v", err)
	}
	sc.ApplyCategories(map[string]int{"table": 1, "workpiece": 2, "worker": 3})
	return render.Frame{Index: 0, Scene: sc}
}

func loadPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

// pixel returns the 8-bit RGB at (x, y).
func pixel(img image.Image, x, y int) (int, int, int) {
	r, g, b, _ := img.At(x, y).RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}

func TestRenderWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, WithSize(200, 200), WithWindow(Window{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := r.Render(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if result.ImagePath != filepath.Join(dir, "image_000000.png") {
		t.Errorf("image path = %s", result.ImagePath)
	}
	if result.SegPath != filepath.Join(dir, "seg_000000.png") {
		t.Errorf("seg path = %s", result.SegPath)
	}

	img := loadPNG(t, result.ImagePath)
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 200 {
		t.Errorf("image bounds = %v", img.Bounds())
	}
	loadPNG(t, result.SegPath)
}

func TestSegmentationEncodesCategories(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, WithSize(200, 200), WithWindow(Window{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := r.Render(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	seg := loadPNG(t, result.SegPath)

	// World (-0.5, -0.4) lies on the table and on nothing else.
	if rr, _, _ := pixel(seg, 75, 120); rr != 1 {
		t.Errorf("table pixel category = %d, want 1", rr)
	}
	// The workpiece sits on the table center and paints over it.
	if rr, _, _ := pixel(seg, 100, 100); rr != 2 {
		t.Errorf("workpiece pixel category = %d, want 2", rr)
	}
	// The worker capsule projects to a disc at (-1.2, 0).
	if rr, _, _ := pixel(seg, 40, 100); rr != 3 {
		t.Errorf("worker pixel category = %d, want 3", rr)
	}
	// Empty floor, and the uncategorized TCP, stay background black.
	if rr, gg, bb := pixel(seg, 190, 10); rr != 0 || gg != 0 || bb != 0 {
		t.Errorf("background pixel = %d,%d,%d, want black", rr, gg, bb)
	}
}

func TestImageUsesRolePalette(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, WithSize(200, 200), WithWindow(Window{MinX: -2, MinY: -2, MaxX: 2, MaxY: 2}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := r.Render(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := loadPNG(t, result.ImagePath)

	want := palette[scene.RoleTable]
	if rr, gg, bb := pixel(img, 75, 120); rr != want.r || gg != want.g || bb != want.b {
		t.Errorf("table pixel = %d,%d,%d, want %v", rr, gg, bb, want)
	}

	// The TCP point at world (0.31, 0.21) lands on pixel (115, 89) and is
	// drawn above the table it hovers over.
	want = palette[scene.RoleTCP]
	if rr, gg, bb := pixel(img, 115, 89); rr != want.r || gg != want.g || bb != want.b {
		t.Errorf("tcp pixel = %d,%d,%d, want %v", rr, gg, bb, want)
	}
}

func TestRenderFrameSizeOverride(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir, WithSize(200, 200))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	frame := testFrame(t)
	frame.Camera.Width = 64
	frame.Camera.Height = 48

	result, err := r.Render(context.Background(), frame)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := loadPNG(t, result.ImagePath)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("image bounds = %v, want 64x48", img.Bounds())
	}
}

func TestRenderCanceledContext(t *testing.T) {
	dir := t.TempDir()
	r, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, testFrame(t)); err == nil {
		t.Error("canceled context should fail the render")
	}
}

func TestNewRejections(t *testing.T) {
	if _, err := New(t.TempDir(), WithSize(0, 100)); err == nil {
		t.Error("zero width should be rejected")
	}
	if _, err := New(t.TempDir(), WithWindow(Window{MinX: 1, MaxX: 1, MinY: 0, MaxY: 1})); err == nil {
		t.Error("empty window should be rejected")
	}
}
