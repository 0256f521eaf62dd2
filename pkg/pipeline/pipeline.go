// Package pipeline drives the full image-generation loop.
//
// This package implements the complete sample → evaluate → render → log loop
// that can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// Each requested image goes through four stages:
//
//  1. Negotiate: rejection-sample candidate poses until one passes every
//     safety constraint, bounded by the configured attempt cap
//  2. Pose: apply the accepted candidate to the scene and sample a camera
//  3. Render: produce the image and segmentation map (cached by provenance)
//  4. Log: append one ImageRecord whatever the outcome
//
// Images are strictly sequential: the shared scene holds exactly one
// accepted configuration at a time, and all randomness flows through one
// seeded source so a fixed seed reproduces the run byte for byte.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stats.Accepted, "images rendered")
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/errors"
	"github.com/matzehuels/cobotgen/pkg/render"
	"github.com/matzehuels/cobotgen/pkg/runlog"
	"github.com/matzehuels/cobotgen/pkg/scene"
)

// TTLFrame is how long cached rendered frames stay valid.
const TTLFrame = 14 * 24 * time.Hour

// Options configures one pipeline execution.
type Options struct {
	// Config is the validated run configuration. Required.
	Config *config.Config

	// Scene overrides loading Config.Scene.Source, mainly for tests.
	Scene *scene.Scene

	// Renderer overrides the default schematic renderer.
	Renderer render.Renderer

	// RunID tags every record of this execution. Generated when empty.
	RunID string

	// SkipExport disables the CSV and MongoDB exports, leaving records
	// only in the in-memory logger.
	SkipExport bool

	// Logger overrides the runner's logger for this execution.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks required options.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Config == nil {
		return errors.New(errors.ErrCodeConfigMissing, "pipeline options require a config")
	}
	return nil
}

// Stats summarizes one execution.
type Stats struct {
	Accepted     int
	Exhausted    int
	RenderFailed int

	// TotalAttempts counts every sample-and-evaluate round across all
	// images, accepted or not.
	TotalAttempts int

	Duration time.Duration
}

// Result is the outcome of one pipeline execution.
type Result struct {
	RunID   string
	Records []runlog.ImageRecord
	Stats   Stats

	// LogPath is the CSV run log, empty when export was skipped.
	LogPath string
}
