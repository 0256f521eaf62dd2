package render

import (
	"context"
	"fmt"

	"github.com/matzehuels/cobotgen/pkg/sampler"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// Frame is one accepted scene configuration ready to render.
type Frame struct {
	Index  int
	Scene  *scene.Scene
	Camera sampler.CameraPose
	Light  sampler.Light
}

// Result holds the file paths of a successfully rendered frame.
type Result struct {
	ImagePath string
	SegPath   string
}

// Renderer turns an accepted frame into an image and a segmentation map.
// A render failure abandons the frame; callers record it and move on rather
// than retrying.
type Renderer interface {
	Render(ctx context.Context, frame Frame) (Result, error)
}

// ImageName returns the base name for the image with the given index.
func ImageName(index int) string {
	return fmt.Sprintf("image_%06d", index)
}

// SegName returns the base name for the segmentation map with the given index.
func SegName(index int) string {
	return fmt.Sprintf("seg_%06d", index)
}
