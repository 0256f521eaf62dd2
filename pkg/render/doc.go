// Package render defines the rendering contract of the image pipeline.
//
// # Overview
//
// A renderer consumes one accepted frame (the posed scene plus camera and
// light) and produces two files: the image itself and a segmentation map
// whose pixel values encode entity category IDs. Renderers report success or
// failure for the whole frame; there are no partial results.
//
// # Schematic Renderer
//
// The [schematic] subpackage draws a top-down orthographic view of the cell
// with solid category colors in the segmentation map. It exists so the full
// pipeline, including file output and run-log paths, runs without any
// external rendering engine.
//
//	r, err := schematic.New(outputDir)
//	result, err := r.Render(ctx, frame)
//
// [schematic]: github.com/matzehuels/cobotgen/pkg/render/schematic
package render
