// Package schematic renders top-down orthographic views of the cell.
//
// Entities are drawn from their collision volumes projected onto the floor
// plane, back to front by height. The image uses a fixed per-role palette;
// the segmentation map encodes each entity's category ID in all three color
// channels, with category 0 (background) rendered black.
package schematic

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/fogleman/gg"

	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/geometry"
	"github.com/matzehuels/cobotgen/pkg/render"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// Window is the world-frame region of the floor plane mapped to the image.
type Window struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// DefaultWindow covers a typical cell centered on the table.
var DefaultWindow = Window{MinX: -3, MinY: -3, MaxX: 3, MaxY: 3}

// rgb is a palette entry.
type rgb struct{ r, g, b int }

var palette = map[scene.Role]rgb{
	scene.RoleTable:       {139, 105, 73},
	scene.RoleWorkpiece:   {214, 174, 60},
	scene.RoleWorker:      {70, 130, 180},
	scene.RoleWorkerHand:  {240, 200, 170},
	scene.RoleManipulator: {200, 90, 70},
	scene.RoleTCP:         {40, 40, 40},
	scene.RoleGripper:     {120, 120, 130},
	scene.RoleEnvironment: {80, 110, 80},
}

// Option configures the renderer.
type Option func(*Renderer)

// WithSize overrides the output image dimensions.
func WithSize(width, height int) Option {
	return func(r *Renderer) { r.width, r.height = width, height }
}

// WithWindow overrides the rendered world region.
func WithWindow(w Window) Option {
	return func(r *Renderer) { r.window = w }
}

// Renderer draws schematic frames into an output directory.
type Renderer struct {
	outputDir string
	width     int
	height    int
	window    Window
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a schematic renderer writing into outputDir, creating the
// directory if needed.
func New(outputDir string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		outputDir: outputDir,
		width:     640,
		height:    480,
		window:    DefaultWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.width <= 0 || r.height <= 0 {
		return nil, errors.New(errors.ErrCodeConfigValue, "image size must be positive, got %dx%d", r.width, r.height)
	}
	if r.window.MaxX <= r.window.MinX || r.window.MaxY <= r.window.MinY {
		return nil, errors.New(errors.ErrCodeConfigValue, "render window is empty")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "create output dir %s", outputDir)
	}
	return r, nil
}

// Render draws the frame's image and segmentation map and returns their
// paths. Camera size, when set on the frame, overrides the renderer default
// for this frame only.
func (r *Renderer) Render(ctx context.Context, frame render.Frame) (render.Result, error) {
	if err := ctx.Err(); err != nil {
		return render.Result{}, errors.Wrap(errors.ErrCodeRender, err, "render canceled")
	}

	width, height := r.width, r.height
	if frame.Camera.Width > 0 && frame.Camera.Height > 0 {
		width, height = frame.Camera.Width, frame.Camera.Height
	}

	imagePath := filepath.Join(r.outputDir, render.ImageName(frame.Index)+".png")
	segPath := filepath.Join(r.outputDir, render.SegName(frame.Index)+".png")

	if err := r.draw(frame.Scene, width, height, false, imagePath); err != nil {
		return render.Result{}, err
	}
	if err := r.draw(frame.Scene, width, height, true, segPath); err != nil {
		return render.Result{}, err
	}
	return render.Result{ImagePath: imagePath, SegPath: segPath}, nil
}

// draw renders one pass. In segmentation mode every entity is filled with
// its flat category color and entities with category 0 are skipped, leaving
// them as background.
func (r *Renderer) draw(sc *scene.Scene, width, height int, segmentation bool, path string) error {
	dc := gg.NewContext(width, height)

	if segmentation {
		dc.SetRGB255(0, 0, 0)
	} else {
		dc.SetRGB255(245, 245, 245)
	}
	dc.Clear()

	// Back to front: taller volumes paint over lower ones.
	entities := slices.Clone(sc.Entities())
	slices.SortFunc(entities, func(a, b *scene.Entity) int {
		return cmp.Compare(a.Volume().Bounds().Max.Z, b.Volume().Bounds().Max.Z)
	})

	for _, e := range entities {
		if segmentation {
			if e.CategoryID == 0 {
				continue
			}
			id := e.CategoryID % 256
			dc.SetRGB255(id, id, id)
		} else {
			c, ok := palette[e.Role]
			if !ok {
				c = rgb{160, 160, 160}
			}
			dc.SetRGB255(c.r, c.g, c.b)
		}
		r.fillFootprint(dc, e.Volume(), width, height)
	}

	if err := dc.SavePNG(path); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "save %s", path)
	}
	return nil
}

// fillFootprint paints the floor-plane projection of a volume.
func (r *Renderer) fillFootprint(dc *gg.Context, vol geometry.Volume, width, height int) {
	sx := float64(width) / (r.window.MaxX - r.window.MinX)
	sy := float64(height) / (r.window.MaxY - r.window.MinY)
	px := func(x float64) float64 { return (x - r.window.MinX) * sx }
	py := func(y float64) float64 { return float64(height) - (y-r.window.MinY)*sy }
	scale := min(sx, sy)

	switch v := vol.(type) {
	case geometry.Point:
		dc.DrawCircle(px(v.P.X), py(v.P.Y), 0.02*scale)
		dc.Fill()
	case geometry.Sphere:
		dc.DrawCircle(px(v.Center.X), py(v.Center.Y), v.Radius*scale)
		dc.Fill()
	case geometry.Capsule:
		ax, ay := px(v.A.X), py(v.A.Y)
		bx, by := px(v.B.X), py(v.B.Y)
		dx, dy := bx-ax, by-ay
		if dx*dx+dy*dy < 1 {
			// Vertical capsule: the footprint is a disc.
			dc.DrawCircle(ax, ay, v.Radius*scale)
			dc.Fill()
			return
		}
		dc.SetLineCapRound()
		dc.SetLineWidth(2 * v.Radius * scale)
		dc.DrawLine(ax, ay, bx, by)
		dc.Stroke()
	case geometry.AABB:
		x0, y0 := px(v.Min.X), py(v.Max.Y)
		dc.DrawRectangle(x0, y0, (v.Max.X-v.Min.X)*sx, (v.Max.Y-v.Min.Y)*sy)
		dc.Fill()
	}
}
